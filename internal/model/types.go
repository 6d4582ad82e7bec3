package model

type CurrentUserResponse struct {
	UserID   *int64 `json:"user_id"`
	Username string `json:"username"`
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignupCredentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=4"`
}

type AuthResponse struct {
	Success  bool   `json:"success"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Error    string `json:"error,omitempty"`
}

type MealPayload struct {
	Name      string  `json:"name"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Quantity  string  `json:"quantity"`
	Source    string  `json:"source"`
	CreatedAt string  `json:"created_at"`
}

// MealRecord is a stored meal as the upstream returns it. Nutrient columns are
// nullable upstream; a JSON null decodes to zero.
type MealRecord struct {
	ID        int64   `json:"id,omitempty"`
	Name      string  `json:"name"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Quantity  string  `json:"quantity,omitempty"`
	Source    string  `json:"source,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type LogFoodResponse struct {
	Saved  bool        `json:"saved"`
	Record *MealRecord `json:"record,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type Summary struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type DailySummaryResponse struct {
	Date    string   `json:"date"`
	Summary *Summary `json:"summary"`
}

type EntriesResponse struct {
	Entries []MealRecord `json:"entries"`
}

type PhotoUploadResponse struct {
	Saved         bool         `json:"saved"`
	Filename      string       `json:"filename,omitempty"`
	DetectedLabel string       `json:"detected_label,omitempty"`
	MealsLogged   []MealRecord `json:"meals_logged,omitempty"`
	DailySummary  *Summary     `json:"daily_summary,omitempty"`
	Error         string       `json:"error,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
