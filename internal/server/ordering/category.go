// Package ordering derives the equipment category of an entry and the
// composite order used for listings and exports.
package ordering

import "github.com/dmitrijs2005/equiptracker/internal/server/models"

// Category is the rank of the equipment combination assigned to an entry.
// Lower ranks sort first.
type Category int

const (
	RobotSurrogateHeadset Category = iota // 0
	RobotOnly                             // 1
	SurrogateHeadset                      // 2
	SurrogateOnly                         // 3
	HeadsetOnly                           // 4
	Other                                 // 5
)

func (c Category) String() string {
	switch c {
	case RobotSurrogateHeadset:
		return "robot+surrogate+headset"
	case RobotOnly:
		return "robot"
	case SurrogateHeadset:
		return "surrogate+headset"
	case SurrogateOnly:
		return "surrogate"
	case HeadsetOnly:
		return "headset"
	default:
		return "other"
	}
}

// presence is the (robot, surrogate, headset) assignment pattern.
type presence struct {
	robot, surrogate, headset bool
}

// priority is consulted top to bottom; the first matching row wins and
// anything unmatched is Other.
var priority = []struct {
	match    presence
	category Category
}{
	{presence{robot: true, surrogate: true, headset: true}, RobotSurrogateHeadset},
	{presence{robot: true}, RobotOnly},
	{presence{surrogate: true, headset: true}, SurrogateHeadset},
	{presence{surrogate: true}, SurrogateOnly},
	{presence{headset: true}, HeadsetOnly},
}

// Categorize returns the category of e.
func Categorize(e *models.Entry) Category {
	p := presence{robot: e.HasRobot(), surrogate: e.HasSurrogate(), headset: e.HasHeadset()}
	for _, row := range priority {
		if row.match == p {
			return row.category
		}
	}
	return Other
}
