package analysis

import "github.com/okian/motionlab/internal/domain/model"

// Movements returns the demo movement rows. Each call returns a new slice.
func Movements() []model.Movement {
	return []model.Movement{
		{Time: "0:05", Label: "Sprint Start", Quality: "Excellent", Confidence: 95},
		{Time: "0:12", Label: "Direction Change", Quality: "Good", Confidence: 87},
		{Time: "0:18", Label: "Jump Action", Quality: "Excellent", Confidence: 92},
		{Time: "0:25", Label: "Balance Recovery", Quality: "Good", Confidence: 83},
		{Time: "0:32", Label: "Acceleration", Quality: "Excellent", Confidence: 91},
	}
}

// Techniques returns the demo technique rows.
func Techniques() []model.Technique {
	return []model.Technique{
		{Name: "Posture", Score: 88, Feedback: "Maintains good posture throughout most movements"},
		{Name: "Arm Movement", Score: 82, Feedback: "Effective arm coordination during sprint"},
		{Name: "Foot Placement", Score: 90, Feedback: "Excellent foot positioning and landing"},
		{Name: "Balance", Score: 85, Feedback: "Good balance control during direction changes"},
	}
}

// Recommendations returns the demo training recommendations.
func Recommendations() []string {
	return []string{
		"Focus on improving initial acceleration phase",
		"Work on maintaining speed during direction changes",
		"Practice balance drills to enhance stability",
		"Consider strength training for power generation",
		"Review and refine arm swing technique",
	}
}

// KeyMoments returns the demo key moments.
func KeyMoments() []model.KeyMoment {
	return []model.KeyMoment{
		{Time: "0:08", Label: "Peak Speed Achieved", Description: "Reached maximum velocity of 8.5 m/s"},
		{Time: "0:15", Label: "Agility Test", Description: "Successful rapid direction change"},
		{Time: "0:22", Label: "Power Jump", Description: "Maximum vertical jump height: 65cm"},
		{Time: "0:28", Label: "Recovery Phase", Description: "Quick balance recovery after landing"},
	}
}
