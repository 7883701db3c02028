package texttools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTextSanitizer_Sanitize(t *testing.T) {
	Convey("Sanitize normalizes caption text into speakable plain text", t, func() {
		s := NewTextSanitizer()

		Convey("strips leading timestamp tokens", func() {
			So(s.Sanitize("0-5s: Hello world", 0), ShouldEqual, "Hello world")
			So(s.Sanitize("0-5s: 5-10s: stacked prefixes", 0), ShouldEqual, "stacked prefixes")

			Convey("even when a quote hides the token", func() {
				So(s.Sanitize(`"0-5s: Hello world`, 0), ShouldEqual, "Hello world")
			})
		})

		Convey("strips quotes and markdown markers", func() {
			So(s.Sanitize(`"Buy now" and *save* _big_`, 0), ShouldEqual, "Buy now and save big")
			So(s.Sanitize("# Heading\nbody text", 0), ShouldEqual, "Heading body text")
		})

		Convey("strips emoji", func() {
			So(s.Sanitize("Great deal \U0001F525\U0001F525 today ✨", 0), ShouldEqual, "Great deal today")
		})

		Convey("collapses newlines and repeated whitespace", func() {
			So(s.Sanitize("line one\n\nline   two\r\nline three", 0), ShouldEqual, "line one line two line three")
		})

		Convey("truncates with a hard cut at maxChars runes", func() {
			out := s.Sanitize("abcdefghij", 4)
			So(out, ShouldEqual, "abcd")

			Convey("counting runes, not bytes", func() {
				out := s.Sanitize("héllo wörld", 5)
				So(len([]rune(out)), ShouldBeLessThanOrEqualTo, 5)
			})
		})

		Convey("maxChars <= 0 disables truncation", func() {
			long := strings.Repeat("word ", 100)
			So(len(s.Sanitize(long, 0)), ShouldBeGreaterThan, 400)
		})

		Convey("is idempotent", func() {
			inputs := []string{
				"0-5s: \"Hello\" *world* \U0001F600\nsecond line",
				"\"0-5s: Hello world",
				"## Title\nplain body with   spaces",
				"a cut lands on a space here exactly",
			}
			for _, in := range inputs {
				once := s.Sanitize(in, 20)
				twice := s.Sanitize(once, 20)
				So(twice, ShouldEqual, once)
			}
		})
	})
}
