package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		var buf bytes.Buffer
		So(InitWriter(&buf), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("When logging through Get", func() {
			Get().Info(context.Background(), "dispatching", String("verb", "GET"))

			Convey("Then the record carries the fields and the caller", func() {
				So(buf.String(), ShouldContainSubstring, "dispatching")
				So(buf.String(), ShouldContainSubstring, "verb=GET")
				So(buf.String(), ShouldContainSubstring, "source=")
			})
		})

		Convey("When logging through a named logger", func() {
			Named("dispatch").Info(context.Background(), "hello", Int("status", 200))

			Convey("Then the fields are grouped under the name", func() {
				So(buf.String(), ShouldContainSubstring, "dispatch.status=200")
			})
		})

		Convey("When a nil writer is passed", func() {
			So(InitWriter(nil), ShouldNotBeNil)
		})
	})
}

func TestLoggerLevels(t *testing.T) {
	Convey("Given a standalone logger", t, func() {
		var buf bytes.Buffer
		l := New(&buf)
		defer SetLevel(slog.LevelInfo)

		Convey("When the level is info", func() {
			So(SetLevelString("info"), ShouldBeNil)
			l.Debug(context.Background(), "hidden")
			l.Warn(context.Background(), "shown", Duration("took", 2*time.Second), Error(errors.New("boom")))

			Convey("Then debug records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "took=2s")
				So(buf.String(), ShouldContainSubstring, "error=boom")
			})
		})

		Convey("When the level is debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			l.Debug(context.Background(), "visible", Int64("bytes", 42))

			Convey("Then debug records are written", func() {
				So(buf.String(), ShouldContainSubstring, "bytes=42")
			})
		})

		Convey("When the level is unknown", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestNop(t *testing.T) {
	Convey("Nop and OrNop never panic", t, func() {
		So(func() { Nop().Error(context.Background(), "ignored") }, ShouldNotPanic)
		So(OrNop(nil), ShouldNotBeNil)
		l := Nop()
		So(OrNop(l), ShouldEqual, l)
	})
}
