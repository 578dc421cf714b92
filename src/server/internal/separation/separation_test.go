package separation_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/entity"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/errors"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/gateway"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/layout"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/model"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/stager"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/usecase"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/writer"
	"github.com/veedubyou/stem-separator/src/shared/lib/metrics"
	"github.com/veedubyou/stem-separator/src/shared/lib/wavfile"
	. "github.com/veedubyou/stem-separator/src/shared/testing"
	"github.com/veedubyou/stem-separator/src/shared/testing/dummy"
)

type separateResponse struct {
	JobID  string            `json:"job_id"`
	Tracks map[string]string `json:"tracks"`
}

var _ = Describe("Separation", func() {
	var (
		uploadRoot string
		outputRoot string

		dummyExecutor  *dummy.MediaExecutor
		dummyPublisher *dummy.Publisher
		handle         *model.Handle

		separationGateway separationgateway.Gateway
	)

	BeforeEach(func() {
		root := GinkgoT().TempDir()
		uploadRoot = filepath.Join(root, "uploads")
		outputRoot = filepath.Join(root, "outputs")

		dummyExecutor = dummy.NewMediaExecutor()
		dummyPublisher = dummy.NewPublisher()

		storage := ExpectSuccess(layout.NewLayout(uploadRoot, outputRoot))
		Expect(storage.Ensure()).To(Succeed())

		devices := model.NewDeviceResolver("/usr/bin/nvidia-smi", dummyExecutor)
		loader := ExpectSuccess(model.NewDemucsLoader("/usr/bin/demucs", "htdemucs", filepath.Join(root, "wd"), devices, dummyExecutor))
		handle = model.NewHandle(loader, devices, 1)

		mediaStager := stager.NewStager(storage, stager.NewFFmpegExtractor("/usr/bin/ffmpeg", dummyExecutor))
		resultWriter := writer.NewResultWriter(storage)

		usecase := separationusecase.NewUsecase(storage, mediaStager, handle, resultWriter, dummyPublisher)
		separationGateway = separationgateway.NewGateway(usecase)
	})

	var filesIn = func(dir string) []string {
		entries := ExpectSuccess(os.ReadDir(dir))
		names := []string{}
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		return names
	}

	var separate = func(upload *Upload) *httptest.ResponseRecorder {
		request := RequestFactory{
			Method: "POST",
			Target: "/api/separate",
			Upload: upload,
		}.MakeFake()
		response := httptest.NewRecorder()
		c := PrepareEchoContext(request, response)

		err := separationGateway.Separate(c)
		Expect(err).NotTo(HaveOccurred())
		return response
	}

	var download = func(jobID string, stem string) (*httptest.ResponseRecorder, error) {
		request := RequestFactory{
			Method: "GET",
			Target: "/api/download/" + jobID + "/" + stem,
		}.MakeFake()
		response := httptest.NewRecorder()
		c := PrepareEchoContextWithParams(request, response, PathParams{"job_id": jobID, "stem": stem})

		err := separationGateway.Download(c, jobID, stem)
		return response, err
	}

	var wavUpload = func(fileName string) *Upload {
		path := filepath.Join(GinkgoT().TempDir(), "fixture.wav")
		WriteToneWAV(path, 330, 441)
		return &Upload{
			FieldName: "file",
			FileName:  fileName,
			Content:   ExpectSuccess(os.ReadFile(path)),
		}
	}

	Describe("Health", func() {
		It("reports healthy without a gpu", func() {
			request := RequestFactory{Method: "GET", Target: "/health"}.MakeFake()
			response := httptest.NewRecorder()
			Expect(separationGateway.Health(PrepareEchoContext(request, response))).To(Succeed())

			Expect(response.Code).To(Equal(http.StatusOK))
			body := DecodeJSON[map[string]interface{}](response.Body)
			Expect(body).To(Equal(map[string]interface{}{
				"status":          "healthy",
				"torch_available": false,
			}))
		})

		It("reports the gpu when there is one", func() {
			dummyExecutor.GPUAvailable = true

			request := RequestFactory{Method: "GET", Target: "/health"}.MakeFake()
			response := httptest.NewRecorder()
			Expect(separationGateway.Health(PrepareEchoContext(request, response))).To(Succeed())

			body := DecodeJSON[entity.Health](response.Body)
			Expect(body.TorchAvailable).To(BeTrue())
			Expect(handle.Loaded()).To(BeFalse())
		})
	})

	Describe("Separate", func() {
		Describe("Rejected requests", func() {
			var ItWritesNothing = func(getResponse func() *httptest.ResponseRecorder) {
				It("writes nothing under either root", func() {
					getResponse()
					Expect(filesIn(uploadRoot)).To(BeEmpty())
					Expect(filesIn(outputRoot)).To(BeEmpty())
				})

				It("never touches the model", func() {
					getResponse()
					Expect(dummyExecutor.Calls()).To(BeEmpty())
				})
			}

			Describe("Without a file field", func() {
				var respond = func() *httptest.ResponseRecorder {
					return separate(&Upload{FieldName: "attachment", FileName: "song.mp3", Content: []byte("x")})
				}

				It("returns 400 with the message", func() {
					response := respond()
					Expect(response.Code).To(Equal(http.StatusBadRequest))
					Expect(DecodeJSONError(response.Body).Error).To(Equal("No file provided"))
				})

				It("counts as a failed separation", func() {
					before := metrics.SeparationCount(metrics.OutcomeFailure, string(separationerrors.NoFileProvidedCode))
					respond()
					after := metrics.SeparationCount(metrics.OutcomeFailure, string(separationerrors.NoFileProvidedCode))
					Expect(after - before).To(Equal(float64(1)))
				})

				ItWritesNothing(respond)
			})

			Describe("Without any body", func() {
				It("returns 400 no file provided", func() {
					response := separate(nil)
					Expect(response.Code).To(Equal(http.StatusBadRequest))
					Expect(DecodeJSONError(response.Body).Error).To(Equal("No file provided"))
				})
			})

			Describe("With an empty file name", func() {
				var respond = func() *httptest.ResponseRecorder {
					return separate(&Upload{FieldName: "file", FileName: "", Content: []byte("x")})
				}

				It("returns 400 no file selected", func() {
					response := respond()
					Expect(response.Code).To(Equal(http.StatusBadRequest))
					Expect(DecodeJSONError(response.Body).Error).To(Equal("No file selected"))
				})

				ItWritesNothing(respond)
			})

			Describe("With a disallowed extension", func() {
				var respond = func() *httptest.ResponseRecorder {
					return separate(&Upload{FieldName: "file", FileName: "archive.zip", Content: []byte("PK")})
				}

				It("returns 400 file type not allowed", func() {
					response := respond()
					Expect(response.Code).To(Equal(http.StatusBadRequest))
					Expect(DecodeJSONError(response.Body).Error).To(Equal("File type not allowed"))
				})

				ItWritesNothing(respond)
			})
		})

		Describe("An audio upload", func() {
			var (
				response *httptest.ResponseRecorder
				body     separateResponse
			)

			BeforeEach(func() {
				response = separate(wavUpload("song.mp3"))
				Expect(response.Code).To(Equal(http.StatusOK))
				body = DecodeJSON[separateResponse](response.Body)
			})

			It("returns a job id", func() {
				_, err := entity.ParseJobID(body.JobID)
				Expect(err).NotTo(HaveOccurred())
			})

			It("returns a download path for exactly the four stems", func() {
				Expect(body.Tracks).To(Equal(map[string]string{
					"drums":  "/api/download/" + body.JobID + "/drums",
					"bass":   "/api/download/" + body.JobID + "/bass",
					"other":  "/api/download/" + body.JobID + "/other",
					"vocals": "/api/download/" + body.JobID + "/vocals",
				}))
			})

			It("never extracts audio", func() {
				Expect(dummyExecutor.CallsTo("ffmpeg")).To(BeEmpty())
			})

			It("removes the staged input", func() {
				Expect(filesIn(uploadRoot)).To(BeEmpty())
			})

			It("keeps the stems in the job output dir", func() {
				Expect(filesIn(filepath.Join(outputRoot, body.JobID))).To(ConsistOf(
					"drums.wav", "bass.wav", "other.wav", "vocals.wav"))
			})

			It("publishes a completion event", func() {
				messages := dummyPublisher.Messages()
				Expect(messages).To(HaveLen(1))
				Expect(messages[0].Type).To(Equal(separationusecase.CompletedEventType))

				event := entity.CompletedEvent{}
				Expect(json.Unmarshal(messages[0].Body, &event)).To(Succeed())
				Expect(string(event.JobID)).To(Equal(body.JobID))
				Expect(event.FileName).To(Equal("song.mp3"))
			})

			Describe("Downloading", func() {
				It("serves every stem as a 44.1kHz wav attachment", func() {
					for _, stem := range entity.AllStems {
						downloadResponse, err := download(body.JobID, string(stem))
						Expect(err).NotTo(HaveOccurred())
						Expect(downloadResponse.Code).To(Equal(http.StatusOK))
						Expect(downloadResponse.Header().Get("Content-Disposition")).To(ContainSubstring(string(stem) + ".wav"))

						saved := filepath.Join(GinkgoT().TempDir(), "downloaded.wav")
						Expect(os.WriteFile(saved, downloadResponse.Body.Bytes(), 0o644)).To(Succeed())
						decoded := ExpectSuccess(wavfile.Decode(saved))
						Expect(decoded.SampleRate).To(Equal(44100))
					}
				})

				It("serves identical bytes every time", func() {
					first, err := download(body.JobID, "vocals")
					Expect(err).NotTo(HaveOccurred())
					second, err := download(body.JobID, "vocals")
					Expect(err).NotTo(HaveOccurred())

					Expect(first.Body.Len()).NotTo(BeZero())
					Expect(bytes.Equal(first.Body.Bytes(), second.Body.Bytes())).To(BeTrue())
				})
			})
		})

		Describe("A video upload", func() {
			var response *httptest.ResponseRecorder

			JustBeforeEach(func() {
				response = separate(&Upload{FieldName: "file", FileName: "Concert.MKV", Content: []byte("matroska")})
			})

			It("extracts the audio before separating", func() {
				Expect(response.Code).To(Equal(http.StatusOK))
				Expect(dummyExecutor.CallsTo("ffmpeg")).To(HaveLen(1))
				Expect(dummyExecutor.SeparationCalls()).To(HaveLen(1))
			})

			It("leaves no staged files behind", func() {
				Expect(filesIn(uploadRoot)).To(BeEmpty())
			})

			Describe("When extraction fails", func() {
				BeforeEach(func() {
					dummyExecutor.FFmpegUnavailable = true
				})

				It("returns 500 with the underlying message", func() {
					Expect(response.Code).To(Equal(http.StatusInternalServerError))
					Expect(DecodeJSONError(response.Body).Error).To(ContainSubstring("Invalid data found when processing input"))
				})

				It("never runs the model", func() {
					Expect(dummyExecutor.SeparationCalls()).To(BeEmpty())
				})
			})
		})

		Describe("When the model fails", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				dummyExecutor.DemucsUnavailable = true
				response = separate(wavUpload("song.wav"))
			})

			It("returns 500 with the underlying message", func() {
				Expect(response.Code).To(Equal(http.StatusInternalServerError))
				Expect(DecodeJSONError(response.Body).Error).To(ContainSubstring("CUDA out of memory"))
			})

			It("still removes the staged input", func() {
				Expect(filesIn(uploadRoot)).To(BeEmpty())
			})

			It("leaves the job's output dir in place", func() {
				Expect(filesIn(outputRoot)).To(HaveLen(1))
			})

			It("publishes nothing", func() {
				Expect(dummyPublisher.Messages()).To(BeEmpty())
			})
		})

		Describe("When the event queue is down", func() {
			BeforeEach(func() {
				dummyPublisher.Unavailable = true
			})

			It("still succeeds", func() {
				response := separate(wavUpload("song.wav"))
				Expect(response.Code).To(Equal(http.StatusOK))
			})
		})
	})

	Describe("Download", func() {
		var ItIsNotFound = func(jobID string, stem string) {
			It("returns 404", func() {
				response, err := download(jobID, stem)
				Expect(err).NotTo(HaveOccurred())
				Expect(response.Code).To(Equal(http.StatusNotFound))
				Expect(DecodeJSONError(response.Body).Error).NotTo(BeEmpty())
			})
		}

		Describe("For a job that was never made", func() {
			ItIsNotFound("not-a-real-job", "vocals")
		})

		Describe("For a well formed but unknown job", func() {
			ItIsNotFound(string(entity.NewJobID()), "vocals")
		})

		Describe("For a path traversal attempt", func() {
			ItIsNotFound("..", "vocals")
			ItIsNotFound("../../etc", "passwd")
		})

		Describe("For an unknown stem of a real job", func() {
			var jobID string

			BeforeEach(func() {
				response := separate(wavUpload("song.wav"))
				jobID = DecodeJSON[separateResponse](response.Body).JobID
			})

			It("returns 404", func() {
				response, err := download(jobID, "guitar")
				Expect(err).NotTo(HaveOccurred())
				Expect(response.Code).To(Equal(http.StatusNotFound))
			})
		})
	})
})
