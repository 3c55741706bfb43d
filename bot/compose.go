package bot

import (
	"fmt"

	"github.com/bluesky-social/aibot/detector"
)

// AIThreshold is the score above which an image is reported as probably AI generated.
const AIThreshold = 0.5

// ComposeVerdict renders a classification as reply text.
func ComposeVerdict(res detector.Result) string {
	percentage := fmt.Sprintf("%d%% probability", res.Percent())
	if res.AI > AIThreshold {
		return fmt.Sprintf("Hi there! This image is probably AI generated (%s)", percentage)
	}
	return fmt.Sprintf("Hi there! This image is probably not AI Generated (%s)", percentage)
}

// ComposeApology renders a failure as reply text, so the requester still hears back.
func ComposeApology(err error) string {
	return fmt.Sprintf("Oops! An error occurred: %s", err.Error())
}
