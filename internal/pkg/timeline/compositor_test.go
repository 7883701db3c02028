package timeline

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompositor_Build(t *testing.T) {
	Convey("Build turns a rendered video and caption into a multi-track edit", t, func() {
		c := NewCompositor()
		videoURL := "https://cdn.example.com/raw.mp4"

		Convey("rejects bad input", func() {
			_, err := c.Build("", 10, "caption")
			So(err, ShouldNotBeNil)

			_, err = c.Build(videoURL, 0, "caption")
			So(err, ShouldNotBeNil)

			_, err = c.Build(videoURL, -3, "caption")
			So(err, ShouldNotBeNil)
		})

		Convey("video track clips exactly tile [0, duration)", func() {
			for _, duration := range []float64{5, 10, 12.5, 30, 61} {
				spec, err := c.Build(videoURL, duration, "one two three")
				So(err, ShouldBeNil)

				videoTrack := spec.Tracks[len(spec.Tracks)-1]
				So(len(videoTrack.Clips), ShouldBeLessThanOrEqualTo, 6)

				cursor := 0.0
				for _, clip := range videoTrack.Clips {
					So(clip.Start, ShouldAlmostEqual, cursor, 1e-9)
					So(clip.Length, ShouldBeGreaterThan, 0)
					cursor += clip.Length
				}
				So(cursor, ShouldAlmostEqual, duration, 1e-9)
			}
		})

		Convey("a 30s video gets 6 segments of 5s trimmed from the source", func() {
			spec, err := c.Build(videoURL, 30, "caption text")
			So(err, ShouldBeNil)

			videoTrack := spec.Tracks[len(spec.Tracks)-1]
			So(len(videoTrack.Clips), ShouldEqual, 6)
			for i, clip := range videoTrack.Clips {
				So(clip.Length, ShouldAlmostEqual, 5.0, 1e-9)
				So(clip.TrimStart, ShouldAlmostEqual, clip.Start, 1e-9)
				So(clip.Asset.Src, ShouldEqual, videoURL)

				if i == 0 {
					So(clip.Transition, ShouldBeNil)
				} else {
					So(clip.Transition, ShouldNotBeNil)
				}
			}
		})

		Convey("effects and transitions cycle by index", func() {
			spec, _ := c.Build(videoURL, 30, "caption")
			videoTrack := spec.Tracks[len(spec.Tracks)-1]

			So(videoTrack.Clips[0].Effect, ShouldEqual, "zoomIn")
			So(videoTrack.Clips[1].Effect, ShouldEqual, "zoomOut")
			So(videoTrack.Clips[2].Effect, ShouldEqual, "slideLeft")
			So(videoTrack.Clips[3].Effect, ShouldEqual, "slideRight")
			So(videoTrack.Clips[4].Effect, ShouldEqual, "zoomIn")

			So(videoTrack.Clips[1].Transition.In, ShouldEqual, "fade")
			So(videoTrack.Clips[2].Transition.In, ShouldEqual, "wipeLeft")
			So(videoTrack.Clips[3].Transition.In, ShouldEqual, "slideUp")
			So(videoTrack.Clips[4].Transition.In, ShouldEqual, "fade")
		})

		Convey("the b-roll track mirrors the video segmentation at low opacity", func() {
			spec, _ := c.Build(videoURL, 30, "caption")
			brollTrack := spec.Tracks[len(spec.Tracks)-2]
			videoTrack := spec.Tracks[len(spec.Tracks)-1]

			So(len(brollTrack.Clips), ShouldEqual, len(videoTrack.Clips))
			for i, clip := range brollTrack.Clips {
				So(clip.Start, ShouldAlmostEqual, videoTrack.Clips[i].Start, 1e-9)
				So(clip.Length, ShouldAlmostEqual, videoTrack.Clips[i].Length, 1e-9)
				So(clip.Opacity, ShouldAlmostEqual, 0.15)
				So(clip.Asset.Type, ShouldEqual, AssetTypeShape)
				So(clip.Asset.Color, ShouldNotBeEmpty)
			}
		})

		Convey("caption clips are timed against the measured duration", func() {
			words := make([]string, 45)
			for i := range words {
				words[i] = "word"
			}
			spec, err := c.Build(videoURL, 30, strings.Join(words, " "))
			So(err, ShouldBeNil)

			captionTrack := spec.Tracks[0]
			So(len(captionTrack.Clips), ShouldEqual, 45)

			wordDuration := 30.0 / 45.0
			So(wordDuration, ShouldAlmostEqual, 0.667, 0.001)

			Convey("clip 30 starts at 20.0s", func() {
				So(captionTrack.Clips[30].Start, ShouldAlmostEqual, 20.0, 1e-9)
			})

			Convey("starts are non-decreasing and clips overlap slightly", func() {
				for i := 1; i < len(captionTrack.Clips); i++ {
					prev := captionTrack.Clips[i-1]
					cur := captionTrack.Clips[i]
					So(cur.Start, ShouldBeGreaterThanOrEqualTo, prev.Start)
					So(prev.Start+prev.Length, ShouldBeGreaterThan, cur.Start)
				}
			})

			Convey("the span equals the duration within one clip length", func() {
				last := captionTrack.Clips[len(captionTrack.Clips)-1]
				So(last.Start+last.Length, ShouldBeLessThanOrEqualTo, 30.0+1e-9)
				So(last.Start+last.Length, ShouldBeGreaterThan, 30.0-wordDuration)
			})
		})

		Convey("long or emphasized words get the keyword style", func() {
			spec, _ := c.Build(videoURL, 10, "buy incredible deals now!")
			captionTrack := spec.Tracks[0]

			So(captionTrack.Clips[0].Asset.Style, ShouldEqual, "caption") // buy
			So(captionTrack.Clips[1].Asset.Style, ShouldEqual, "keyword") // incredible
			So(captionTrack.Clips[3].Asset.Style, ShouldEqual, "keyword") // now!
		})

		Convey("an empty caption yields no caption track", func() {
			spec, err := c.Build(videoURL, 10, "")
			So(err, ShouldBeNil)
			So(len(spec.Tracks), ShouldEqual, 2)
			for _, track := range spec.Tracks {
				for _, clip := range track.Clips {
					So(clip.Asset.Type, ShouldNotEqual, AssetTypeTitle)
				}
			}
		})
	})
}
