package xio_test

import (
	"bytes"
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aquarius4k/aquarius/pkg/xio"
)

var _ = Describe("Copy", func() {
	It("copies everything while the context is live", func() {
		var buf bytes.Buffer
		n, err := xio.Copy(context.Background(), &buf, strings.NewReader("pixels"))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(BeEquivalentTo(6))
		Expect(buf.String()).To(Equal("pixels"))
	})

	It("stops on a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var buf bytes.Buffer
		_, err := xio.Copy(ctx, &buf, strings.NewReader("pixels"))
		Expect(err).To(MatchError(context.Canceled))
		Expect(buf.Len()).To(BeZero())
	})

	It("accepts content up to the limit", func() {
		var buf bytes.Buffer
		_, err := xio.CopyN(context.Background(), &buf, strings.NewReader("12345"), 5)
		Expect(err).ToNot(HaveOccurred())
		Expect(buf.String()).To(Equal("12345"))
	})

	It("rejects content over the limit", func() {
		var buf bytes.Buffer
		_, err := xio.CopyN(context.Background(), &buf, strings.NewReader("123456"), 5)
		Expect(err).To(MatchError(xio.ErrTooLarge))
	})
})
