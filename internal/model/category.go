package model

// Category groups goals by life area.
type Category string

const (
	CategoryHealth         Category = "Health"
	CategoryCareer         Category = "Career"
	CategoryFinance        Category = "Finance"
	CategoryEducation      Category = "Education"
	CategoryPersonalGrowth Category = "Personal Growth"
	CategoryRelationships  Category = "Relationships"
	CategoryOther          Category = "Other"
)

// Categories lists the categories offered when creating a goal.
var Categories = []Category{
	CategoryHealth,
	CategoryCareer,
	CategoryFinance,
	CategoryEducation,
	CategoryPersonalGrowth,
	CategoryRelationships,
	CategoryOther,
}

// Priority ranks goals.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities for sorting; unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}
