package videogen

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// stubClassifier returns a canned answer and records the prompt.
type stubClassifier struct {
	answer string
	err    error
	prompt string
}

func (s *stubClassifier) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.answer, s.err
}

func TestSelector_Select(t *testing.T) {
	Convey("Select resolves a classifier answer to a catalog-valid selection", t, func() {
		ctx := context.Background()
		catalog := NewCatalog()

		Convey("a valid answer is accepted with cost and time estimates", func() {
			classifier := &stubClassifier{
				answer: `{"provider": "kling/v2-6", "reason": "best quality for the brief", "alternatives": [{"provider": "kling/v2-1", "reason": "cheaper"}]}`,
			}
			selector := NewSelector(catalog, classifier)

			sel, err := selector.Select(ctx, SelectionRequest{Duration: 10, VideoType: "dance"})
			So(err, ShouldBeNil)
			So(sel.Provider.ID, ShouldEqual, "kling/v2-6")
			So(sel.Reason, ShouldEqual, "best quality for the brief")
			So(sel.EstimatedCost, ShouldAlmostEqual, 0.70)
			So(sel.EstimatedTimeSeconds, ShouldBeGreaterThan, 0)
			So(len(sel.Alternatives), ShouldEqual, 1)
			So(sel.Alternatives[0].ProviderID, ShouldEqual, "kling/v2-1")
		})

		Convey("the filtered catalog and the rules table reach the prompt", func() {
			classifier := &stubClassifier{answer: `{"provider": "hailuo/02", "reason": "r"}`}
			selector := NewSelector(catalog, classifier)

			_, err := selector.Select(ctx, SelectionRequest{Duration: 6, VideoType: "meme", BudgetPriority: "low"})
			So(err, ShouldBeNil)
			So(classifier.prompt, ShouldContainSubstring, "hailuo/02")
			So(classifier.prompt, ShouldNotContainSubstring, "kling/v2-6") // does not support 6s
			So(classifier.prompt, ShouldContainSubstring, "0.40")         // low budget ceiling
		})

		Convey("an unsupported duration fails before the classifier is called", func() {
			classifier := &stubClassifier{answer: `{"provider": "kling/v2-6", "reason": "r"}`}
			selector := NewSelector(catalog, classifier)

			_, err := selector.Select(ctx, SelectionRequest{Duration: 7})
			var selErr *SelectionError
			So(errors.As(err, &selErr), ShouldBeTrue)
			So(selErr.ValidIDs, ShouldNotBeEmpty)
			So(classifier.prompt, ShouldBeEmpty)
		})

		Convey("a hallucinated identifier is corrected before use", func() {
			classifier := &stubClassifier{answer: `{"provider": "kling/2.6", "reason": "r"}`}
			selector := NewSelector(catalog, classifier)

			sel, err := selector.Select(ctx, SelectionRequest{Duration: 10, VideoType: "dance"})
			So(err, ShouldBeNil)
			So(sel.Provider.ID, ShouldEqual, "kling/v2-6")
			So(sel.Provider.Name, ShouldEqual, "Kling 2.6")
		})

		Convey("an answer wrapped in markdown fences still parses", func() {
			classifier := &stubClassifier{
				answer: "```json\n{\"provider\": \"seedance/v1-pro\", \"reason\": \"r\"}\n```",
			}
			selector := NewSelector(catalog, classifier)

			sel, err := selector.Select(ctx, SelectionRequest{Duration: 12, VideoType: "product"})
			So(err, ShouldBeNil)
			So(sel.Provider.ID, ShouldEqual, "seedance/v1-pro")
		})

		Convey("an unresolvable identifier fails with the valid IDs listed", func() {
			classifier := &stubClassifier{answer: `{"provider": "runway/gen3", "reason": "r"}`}
			selector := NewSelector(catalog, classifier)

			_, err := selector.Select(ctx, SelectionRequest{Duration: 10})
			var selErr *SelectionError
			So(errors.As(err, &selErr), ShouldBeTrue)
			So(selErr.Attempted, ShouldEqual, "runway/gen3")
			So(selErr.ValidIDs, ShouldContain, "kling/v2-6")
		})

		Convey("content-type rules overrule the classifier", func() {
			Convey("talking_head never goes to a generative provider", func() {
				classifier := &stubClassifier{answer: `{"provider": "kling/v2-6", "reason": "r"}`}
				selector := NewSelector(catalog, classifier)

				sel, err := selector.Select(ctx, SelectionRequest{Duration: 10, VideoType: "talking_head"})
				So(err, ShouldBeNil)
				So(sel.Provider.Type, ShouldEqual, ProviderTypeAvatar)
				So(sel.Provider.ID, ShouldEqual, "omnihuman/v1_5") // tagged, highest quality
			})

			Convey("dance never goes to an avatar provider", func() {
				classifier := &stubClassifier{answer: `{"provider": "infinitalk/single", "reason": "r"}`}
				selector := NewSelector(catalog, classifier)

				sel, err := selector.Select(ctx, SelectionRequest{Duration: 10, VideoType: "dance"})
				So(err, ShouldBeNil)
				So(sel.Provider.Type, ShouldEqual, ProviderTypeGenerative)
				So(sel.Provider.ID, ShouldEqual, "kling/v2-6")
			})
		})

		Convey("unresolvable alternatives are dropped silently", func() {
			classifier := &stubClassifier{
				answer: `{"provider": "kling/v2-6", "reason": "r", "alternatives": [{"provider": "nonsense/x", "reason": "a"}, {"provider": "kling/2.1", "reason": "b"}]}`,
			}
			selector := NewSelector(catalog, classifier)

			sel, err := selector.Select(ctx, SelectionRequest{Duration: 10, VideoType: "dance"})
			So(err, ShouldBeNil)
			So(len(sel.Alternatives), ShouldEqual, 1)
			So(sel.Alternatives[0].ProviderID, ShouldEqual, "kling/v2-1")
		})

		Convey("a classifier transport error propagates", func() {
			classifier := &stubClassifier{err: errors.New("upstream 503")}
			selector := NewSelector(catalog, classifier)

			_, err := selector.Select(ctx, SelectionRequest{Duration: 10})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "upstream 503")
		})
	})
}

func TestBuildPrompt(t *testing.T) {
	Convey("buildPrompt is reproducible for identical requests", t, func() {
		req := SelectionRequest{Duration: 10, VideoType: "dance", BudgetPriority: "low"}
		candidates := NewCatalog().Find(10)

		first, err := buildPrompt(req, candidates)
		So(err, ShouldBeNil)
		for i := 0; i < 10; i++ {
			again, err := buildPrompt(req, candidates)
			So(err, ShouldBeNil)
			So(again, ShouldEqual, first)
		}

		Convey("the rules table is listed in a stable order", func() {
			broll := strings.Index(first, "- broll content")
			cinematic := strings.Index(first, "- cinematic content")
			ugc := strings.Index(first, "- ugc content")
			So(broll, ShouldBeGreaterThanOrEqualTo, 0)
			So(broll, ShouldBeLessThan, cinematic)
			So(cinematic, ShouldBeLessThan, ugc)
		})
	})
}
