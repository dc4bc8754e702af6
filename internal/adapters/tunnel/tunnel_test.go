package tunnel

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRunner_Start(t *testing.T) {
	Convey("Given a tunnel runner", t, func() {
		ctx := context.Background()

		Convey("When the process prints a matching URL", func() {
			// echo ignores the appended --port flag and exits.
			r, err := New("echo https://bloom-test.loca.lt ready", 8501)
			So(err, ShouldBeNil)

			url, err := r.Start(ctx)

			Convey("Then the URL should be recovered from stdout", func() {
				So(err, ShouldBeNil)
				So(url, ShouldEqual, "https://bloom-test.loca.lt")
				So(r.URL(), ShouldEqual, "https://bloom-test.loca.lt")
			})

			r.Stop()
		})

		Convey("When the process exits without printing a URL", func() {
			r, err := New("echo starting up", 8501)
			So(err, ShouldBeNil)

			_, err = r.Start(ctx)

			Convey("Then it should report the exit", func() {
				So(err, ShouldEqual, ErrTunnelExited)
			})
		})

		Convey("When the process keeps running but never prints a URL", func() {
			// yes prints its arguments forever.
			r, err := New("yes", 8501, WithStartTimeout(200*time.Millisecond))
			So(err, ShouldBeNil)

			_, err = r.Start(ctx)

			Convey("Then the wait should time out", func() {
				So(err, ShouldEqual, ErrNoURL)
			})
		})

		Convey("When a custom URL pattern is configured", func() {
			r, err := New("echo https://custom.example.dev up", 8501,
				WithURLPattern(`https://[a-z]+\.example\.dev`))
			So(err, ShouldBeNil)

			url, err := r.Start(ctx)

			Convey("Then the custom pattern should match", func() {
				So(err, ShouldBeNil)
				So(url, ShouldEqual, "https://custom.example.dev")
			})

			r.Stop()
		})

		Convey("When the command line is empty", func() {
			_, err := New("   ", 8501)

			Convey("Then construction should fail", func() {
				So(err, ShouldEqual, ErrNoCommand)
			})
		})

		Convey("When Start is called twice", func() {
			r, err := New("echo https://twice.loca.lt", 8501)
			So(err, ShouldBeNil)

			_, err = r.Start(ctx)
			So(err, ShouldBeNil)

			_, err = r.Start(ctx)

			Convey("Then the second call should be rejected", func() {
				So(err, ShouldEqual, ErrAlreadyStarted)
			})

			r.Stop()
		})

		Convey("When Stop is called before Start", func() {
			r, err := New("echo nothing", 8501)
			So(err, ShouldBeNil)

			Convey("Then it should not panic", func() {
				So(r.Stop, ShouldNotPanic)
			})
		})
	})
}
