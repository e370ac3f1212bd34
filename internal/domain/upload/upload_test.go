package upload_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/upload"
	. "github.com/smartystreets/goconvey/convey"
)

const maxBytes = 500 * 1024 * 1024

func TestValidate(t *testing.T) {
	Convey("Given the default policy", t, func() {
		p := upload.DefaultPolicy()

		Convey("When a file is exactly 500 MiB", func() {
			h, err := upload.Validate(upload.File{Name: "clip.mp4", Size: maxBytes, MediaType: "video/mp4", Ref: "/tmp/x"}, p)

			Convey("Then it is accepted", func() {
				So(err, ShouldBeNil)
				So(h.DisplayName, ShouldEqual, "clip.mp4")
				So(h.ByteSize, ShouldEqual, maxBytes)
				So(h.FileRef, ShouldEqual, "/tmp/x")
			})
		})

		Convey("When a file is one byte larger", func() {
			_, err := upload.Validate(upload.File{Name: "clip.mp4", Size: maxBytes + 1, MediaType: "video/mp4"}, p)

			Convey("Then it is rejected with the size message", func() {
				So(errors.Is(err, upload.ErrTooLarge), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "File size exceeds 500MB. Please upload a smaller file.")
			})
		})

		Convey("When a non-video is dropped", func() {
			_, err := upload.Validate(upload.File{Name: "notes.txt", Size: 10, MediaType: "text/plain", Source: upload.SourceDrop}, p)
			So(errors.Is(err, upload.ErrNotVideo), ShouldBeTrue)
		})

		Convey("When a non-video is picked", func() {
			_, err := upload.Validate(upload.File{Name: "notes.txt", Size: 10, MediaType: "text/plain", Source: upload.SourcePicker}, p)

			Convey("Then the picker path skips the type check", func() {
				So(err, ShouldBeNil)
			})

			Convey("Unless the policy requires a video type", func() {
				p.RequireVideoType = true
				_, err := upload.Validate(upload.File{Name: "notes.txt", Size: 10, MediaType: "text/plain"}, p)
				So(errors.Is(err, upload.ErrNotVideo), ShouldBeTrue)
			})
		})
	})

	Convey("Given media type helpers", t, func() {
		So(upload.IsVideo("video/webm; codecs=vp9"), ShouldBeTrue)
		So(upload.IsVideo("image/png"), ShouldBeFalse)
		So(upload.IsVideo(""), ShouldBeFalse)
		So(upload.MediaType("video/quicktime", "a.mov"), ShouldEqual, "video/quicktime")
		So(upload.MediaType("", "poster.png"), ShouldEqual, "image/png")
		So(upload.MediaType("", "noext"), ShouldEqual, "")
	})

	Convey("Given source names", t, func() {
		s, err := upload.ParseSource("")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, upload.SourcePicker)
		s, _ = upload.ParseSource("DROP")
		So(s, ShouldEqual, upload.SourceDrop)
		_, err = upload.ParseSource("paste")
		So(errors.Is(err, upload.ErrUnknownSource), ShouldBeTrue)
	})
}

func TestSpool(t *testing.T) {
	Convey("Given a temp directory", t, func() {
		dir := t.TempDir()

		Convey("When the body fits", func() {
			path, n, err := upload.Spool(bytes.NewReader([]byte("0123456789")), dir, 10)

			Convey("Then it is written in full", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 10)
				data, _ := os.ReadFile(path)
				So(string(data), ShouldEqual, "0123456789")
			})

			Convey("And Discard removes it", func() {
				So(upload.Discard(model.VideoHandle{FileRef: path}), ShouldBeNil)
				_, statErr := os.Stat(path)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})

		Convey("When the body is one byte over", func() {
			_, _, err := upload.Spool(bytes.NewReader([]byte("01234567890")), dir, 10)

			Convey("Then it is rejected and nothing is left behind", func() {
				So(errors.Is(err, upload.ErrTooLarge), ShouldBeTrue)
				entries, _ := os.ReadDir(dir)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}
