package model

// MealDraft holds the meal form's raw field values.
type MealDraft struct {
	Name     string `json:"name" form:"name"`
	Calories string `json:"calories" form:"calories"`
	Protein  string `json:"protein" form:"protein"`
	Carbs    string `json:"carbs" form:"carbs"`
	Fat      string `json:"fat" form:"fat"`
	Quantity string `json:"quantity" form:"quantity"`
}

func (d *MealDraft) Reset() {
	*d = MealDraft{}
}

type Goals struct {
	Calories float64 `json:"calories" validate:"gt=0"`
	Protein  float64 `json:"protein" validate:"gt=0"`
	Carbs    float64 `json:"carbs" validate:"gt=0"`
	Fat      float64 `json:"fat" validate:"gt=0"`
}

func DefaultGoals() Goals {
	return Goals{Calories: 2000, Protein: 150, Carbs: 250, Fat: 80}
}
