package backend_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"net/http"

	. "github.com/aquarius4k/aquarius/core/backend"
	"github.com/aquarius4k/aquarius/core/config"
	"github.com/aquarius4k/aquarius/pkg/imageutils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func b64PNG(img image.Image) string {
	data, err := imageutils.PNGBytes(img)
	Expect(err).ToNot(HaveOccurred())
	return base64.StdEncoding.EncodeToString(data)
}

func imagesResponse(items ...map[string]string) map[string]any {
	return map[string]any{"created": 1700000000, "data": items}
}

func decodeBody(r *http.Request) map[string]any {
	body := map[string]any{}
	Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
	return body
}

var _ = Describe("OpenAIPipeline", func() {
	var (
		server   *ghttp.Server
		cfg      config.StudioConfig
		pipeline *OpenAIPipeline
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		cfg = *config.NewStudioConfig(
			config.WithEndpoint(server.URL()+"/v1/"),
			config.WithAuthToken("hf_secret"),
		)

		var err error
		pipeline, err = NewOpenAIPipeline(cfg, nil)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("refuses to start without a credential", func() {
		_, err := NewOpenAIPipeline(*config.NewStudioConfig(), nil)
		Expect(err).To(MatchError(config.ErrMissingAuthToken))
	})

	Describe("TextToImage", func() {
		It("requests the base model with guidance and decodes b64_json", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/v1/images/generations"),
				ghttp.VerifyHeaderKV("Authorization", "Bearer hf_secret"),
				func(w http.ResponseWriter, r *http.Request) {
					body := decodeBody(r)
					Expect(body).To(HaveKeyWithValue("prompt", "a lighthouse at dusk"))
					Expect(body).To(HaveKeyWithValue("model", "CompVis/stable-diffusion-v1-4"))
					Expect(body).To(HaveKeyWithValue("size", "512x512"))
					Expect(body).To(HaveKeyWithValue("response_format", "b64_json"))
					Expect(body).To(HaveKeyWithValue("guidance_scale", 8.5))
					Expect(body).ToNot(HaveKey("file"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, imagesResponse(map[string]string{"b64_json": b64PNG(solid(512, 512))})),
			))

			img, err := pipeline.TextToImage(context.TODO(), "a lighthouse at dusk")
			Expect(err).ToNot(HaveOccurred())
			Expect(img.Bounds().Size()).To(Equal(image.Pt(512, 512)))
		})

		It("follows URL responses", func() {
			server.AppendHandlers(
				ghttp.RespondWithJSONEncoded(http.StatusOK, imagesResponse(map[string]string{"url": server.URL() + "/generated-images/b64123.png"})),
				ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodGet, "/generated-images/b64123.png"),
					func(w http.ResponseWriter, r *http.Request) {
						data, err := imageutils.PNGBytes(solid(8, 8))
						Expect(err).ToNot(HaveOccurred())
						_, _ = w.Write(data)
					},
				),
			)

			img, err := pipeline.TextToImage(context.TODO(), "x")
			Expect(err).ToNot(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(8))
		})

		It("reports an empty response", func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, imagesResponse()))
			_, err := pipeline.TextToImage(context.TODO(), "x")
			Expect(err).To(MatchError(ErrNoImage))
		})

		It("does not retry failures", func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusInternalServerError, map[string]any{
				"error": map[string]any{"message": "CUDA out of memory", "type": "server_error"},
			}))
			_, err := pipeline.TextToImage(context.TODO(), "x")
			Expect(err).To(MatchError(ContainSubstring("CUDA out of memory")))
			Expect(server.ReceivedRequests()).To(HaveLen(1))
		})
	})

	Describe("Upscale", func() {
		It("sends the source image to the upscaler model", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/v1/images/generations"),
				func(w http.ResponseWriter, r *http.Request) {
					body := decodeBody(r)
					Expect(body).To(HaveKeyWithValue("model", "stabilityai/stable-diffusion-x4-upscaler"))
					Expect(body).To(HaveKeyWithValue("size", "2048x2048"))
					Expect(body).To(HaveKeyWithValue("prompt", "a lighthouse at dusk"))

					raw, err := base64.StdEncoding.DecodeString(body["file"].(string))
					Expect(err).ToNot(HaveOccurred())
					src, err := imageutils.Decode(raw)
					Expect(err).ToNot(HaveOccurred())
					Expect(src.Bounds().Size()).To(Equal(image.Pt(512, 512)))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, imagesResponse(map[string]string{"b64_json": b64PNG(solid(64, 64))})),
			))

			img, err := pipeline.Upscale(context.TODO(), "a lighthouse at dusk", solid(512, 512))
			Expect(err).ToNot(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(64))
		})
	})

	Describe("settings", func() {
		It("reads the live settings on every call", func() {
			holder := config.NewHolder(cfg)
			p, err := NewOpenAIPipeline(cfg, holder.Get)
			Expect(err).ToNot(HaveOccurred())

			next := cfg
			next.GuidanceScale = 3
			next.BaseModel = "runwayml/stable-diffusion-v1-5"
			holder.Set(next)

			server.AppendHandlers(ghttp.CombineHandlers(
				func(w http.ResponseWriter, r *http.Request) {
					body := decodeBody(r)
					Expect(body).To(HaveKeyWithValue("guidance_scale", 3.0))
					Expect(body).To(HaveKeyWithValue("model", "runwayml/stable-diffusion-v1-5"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, imagesResponse(map[string]string{"b64_json": b64PNG(solid(4, 4))})),
			))
			_, err = p.TextToImage(context.TODO(), "x")
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("Preload", func() {
		model := func(id string) map[string]any {
			return map[string]any{"id": id, "object": "model", "created": 0, "owned_by": "localai"}
		}

		It("checks both models", func() {
			server.AppendHandlers(
				ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodGet, "/v1/models/CompVis/stable-diffusion-v1-4"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, model("CompVis/stable-diffusion-v1-4")),
				),
				ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodGet, "/v1/models/stabilityai/stable-diffusion-x4-upscaler"),
					ghttp.RespondWithJSONEncoded(http.StatusOK, model("stabilityai/stable-diffusion-x4-upscaler")),
				),
			)
			Expect(pipeline.Preload(context.TODO())).To(Succeed())
			Expect(server.ReceivedRequests()).To(HaveLen(2))
		})

		It("fails when the credential is rejected", func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusUnauthorized, map[string]any{
				"error": map[string]any{"message": "invalid token"},
			}))
			Expect(pipeline.Preload(context.TODO())).To(MatchError(ContainSubstring("CompVis/stable-diffusion-v1-4")))
		})
	})
})
