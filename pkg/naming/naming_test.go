package naming_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aquarius4k/aquarius/pkg/naming"
)

var _ = Describe("Allocator", func() {
	a := naming.Default()

	Context("over a listing", func() {
		It("starts at 1", func() {
			Expect(a.Format(a.Next(nil))).To(Equal("AQ_0001.png"))
		})

		It("continues after the highest index", func() {
			Expect(a.Next([]string{"AQ_0001.png", "AQ_0002.png", "AQ_0003.png"})).To(Equal(4))
			Expect(a.Next([]string{"AQ_0010.png", "AQ_0002.png"})).To(Equal(11))
		})

		It("ignores names that do not match", func() {
			names := []string{
				"AQ_0005.jpg",
				"BQ_0009.png",
				"AQ_abcd.png",
				"AQ_.png",
				"AQ_00x1.png",
				"AQ_-003.png",
				"notes.txt",
				"AQ_0002.png",
			}
			Expect(a.Next(names)).To(Equal(3))
		})

		It("reads the number before a tag or an extra extension", func() {
			Expect(a.Next([]string{"AQ_0009_edit.png"})).To(Equal(10))
			Expect(a.Next([]string{"AQ_0007.backup.png"})).To(Equal(8))
			Expect(a.Next([]string{"AQ_draft_0042.png", "AQ_0003.png"})).To(Equal(4))
		})

		It("pads to the configured width and grows past it", func() {
			Expect(a.Format(42)).To(Equal("AQ_0042.png"))
			Expect(a.Format(12345)).To(Equal("AQ_12345.png"))
		})
	})

	Context("over a directory", func() {
		var dir string

		touch := func(name string) {
			Expect(os.WriteFile(filepath.Join(dir, name), nil, 0o644)).To(Succeed())
		}

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("allocates AQ_0001.png in an empty directory", func() {
			Expect(a.Allocate(dir)).To(Equal("AQ_0001.png"))
		})

		It("allocates AQ_0004.png after three images", func() {
			touch("AQ_0001.png")
			touch("AQ_0002.png")
			touch("AQ_0003.png")
			Expect(a.Allocate(dir)).To(Equal("AQ_0004.png"))
		})

		It("skips directories and unrelated files", func() {
			touch("AQ_0002.png")
			touch("AQ_final.png")
			Expect(os.Mkdir(filepath.Join(dir, "AQ_0099.png"), 0o755)).To(Succeed())
			Expect(a.Allocate(dir)).To(Equal("AQ_0003.png"))
		})

		It("fails on a missing directory", func() {
			_, err := a.Allocate(filepath.Join(dir, "missing"))
			Expect(err).To(HaveOccurred())
		})
	})
})
