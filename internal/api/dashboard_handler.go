package api

import (
	"HealthyTrack-Dashboard/internal/auth"
	"HealthyTrack-Dashboard/internal/model"
	"HealthyTrack-Dashboard/internal/repository"
	"HealthyTrack-Dashboard/internal/service"
	"HealthyTrack-Dashboard/internal/view"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// MealRequest accepts numbers or strings for every field, as a form would
// send them.
type MealRequest struct {
	Name     any `json:"name"`
	Calories any `json:"calories"`
	Protein  any `json:"protein"`
	Carbs    any `json:"carbs"`
	Fat      any `json:"fat"`
	Quantity any `json:"quantity"`
}

func (r MealRequest) Draft() model.MealDraft {
	return model.MealDraft{
		Name:     cast.ToString(r.Name),
		Calories: cast.ToString(r.Calories),
		Protein:  cast.ToString(r.Protein),
		Carbs:    cast.ToString(r.Carbs),
		Fat:      cast.ToString(r.Fat),
		Quantity: cast.ToString(r.Quantity),
	}
}

type GoalRequest struct {
	Calories any `json:"calories"`
}

type AnswerRequest struct {
	Option *int `json:"option" form:"option" binding:"required"`
}

type ChatRequest struct {
	Message string `json:"message" form:"message"`
}

// Services groups what the handler drives.
type Services struct {
	Gate     *auth.SessionGate
	Shell    *view.Shell
	Meals    *service.MealService
	Photos   *service.PhotoService
	Goals    *repository.GoalRepository
	Quiz     *service.QuizEngine
	Recorder *service.QuizRecorder
	Chat     *service.ChatController
}

type DashboardHandler struct {
	svc    Services
	logger *zap.Logger
}

func NewDashboardHandler(svc Services, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger.Named("api")}
}

// statusFor maps the error taxonomy onto HTTP statuses for the local surface.
func statusFor(err error) int {
	var (
		validationErr *model.ValidationError
		netErr        *model.NetworkError
		rejection     *model.RejectionError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	case errors.As(err, &netErr), errors.As(err, &rejection):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respond writes the full view; notices raised by the action travel with it.
func (h *DashboardHandler) respond(c *gin.Context, err error) {
	c.JSON(statusFor(err), h.svc.Shell.View())
}

func (h *DashboardHandler) ViewHandler(c *gin.Context) {
	h.respond(c, nil)
}

func (h *DashboardHandler) LoginHandler(c *gin.Context) {
	h.authenticate(c, "login")
}

func (h *DashboardHandler) SignupHandler(c *gin.Context) {
	h.authenticate(c, "signup")
}

func (h *DashboardHandler) authenticate(c *gin.Context, action string) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	var err error
	if action == "signup" {
		_, err = h.svc.Gate.Signup(c.Request.Context(), req.Username, req.Password)
	} else {
		_, err = h.svc.Gate.Login(c.Request.Context(), req.Username, req.Password)
	}
	if err != nil {
		h.svc.Shell.Notify(auth.FailureText(action, err))
		status := statusFor(err)
		var rejection *model.RejectionError
		if errors.As(err, &rejection) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, h.svc.Shell.View())
		return
	}

	if action == "signup" {
		h.svc.Shell.Notify("Account created successfully!")
	} else {
		h.svc.Shell.Notify("Login successful!")
	}
	h.respond(c, nil)
}

func (h *DashboardHandler) LogoutHandler(c *gin.Context) {
	h.svc.Gate.Logout(c.Request.Context())
	h.respond(c, nil)
}

func (h *DashboardHandler) SubmitMealHandler(c *gin.Context) {
	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	_, err := h.svc.Meals.Submit(c.Request.Context(), req.Draft())
	h.respond(c, err)
}

func (h *DashboardHandler) StagePhotoHandler(c *gin.Context) {
	header, err := c.FormFile("photo")
	if err != nil {
		h.svc.Shell.Notify(model.ErrNoPhotoSelected.Message)
		h.respond(c, model.ErrNoPhotoSelected)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.logger.Error("cannot open uploaded photo", zap.Error(err))
		h.respond(c, err)
		return
	}
	defer file.Close()

	if err := h.svc.Photos.Stage(header.Filename, file); err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			h.svc.Shell.Notify(validationErr.Message)
		}
		h.respond(c, err)
		return
	}
	h.respond(c, nil)
}

func (h *DashboardHandler) AnalyzePhotoHandler(c *gin.Context) {
	_, err := h.svc.Photos.Analyze(c.Request.Context())
	h.respond(c, err)
}

func (h *DashboardHandler) ClearPhotoHandler(c *gin.Context) {
	h.svc.Photos.Clear()
	h.respond(c, nil)
}

func (h *DashboardHandler) PhotoPreviewHandler(c *gin.Context) {
	data, mimeType, err := h.svc.Photos.Preview()
	if err != nil {
		if errors.Is(err, model.ErrNoPhotoSelected) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, mimeType, data)
}

func (h *DashboardHandler) GetGoalsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Goals.Get())
}

func (h *DashboardHandler) SetGoalsHandler(c *gin.Context) {
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	calories, err := cast.ToFloat64E(req.Calories)
	if err != nil {
		calories = 0
	}

	goals, err := h.svc.Goals.SetCalorieGoal(calories)
	if err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			h.svc.Shell.Notify(validationErr.Message)
		}
		h.respond(c, err)
		return
	}
	h.svc.Shell.Notify("Goal set to " + strconv.FormatFloat(goals.Calories, 'f', -1, 64) + " calories")
	h.respond(c, nil)
}

func (h *DashboardHandler) QuizStateHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Quiz.State())
}

func (h *DashboardHandler) QuizStartHandler(c *gin.Context) {
	h.svc.Quiz.Start()
	h.respond(c, nil)
}

func (h *DashboardHandler) QuizAnswerHandler(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	_, err := h.svc.Quiz.SelectAnswer(*req.Option)
	h.quizResult(c, err)
}

func (h *DashboardHandler) QuizNextHandler(c *gin.Context) {
	_, err := h.svc.Quiz.Advance()
	h.quizResult(c, err)
}

func (h *DashboardHandler) QuizQuitHandler(c *gin.Context) {
	_, err := h.svc.Quiz.Quit()
	h.quizResult(c, err)
}

func (h *DashboardHandler) QuizRetakeHandler(c *gin.Context) {
	_, err := h.svc.Quiz.Retake()
	h.quizResult(c, err)
}

func (h *DashboardHandler) quizResult(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		h.svc.Shell.Notify(validationErr.Message)
	}
	h.respond(c, err)
}

func (h *DashboardHandler) QuizHistoryHandler(c *gin.Context) {
	limit := cast.ToInt(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	history, err := h.svc.Recorder.History(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, model.ErrAuthRequired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in to see your quiz history."})
			return
		}
		h.logger.Error("cannot load quiz history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot load quiz history"})
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *DashboardHandler) chatView(accepted bool) gin.H {
	state := h.svc.Chat.State()
	return gin.H{
		"accepted":      accepted,
		"chat":          state,
		"html":          h.svc.Shell.ChatHTML(state),
		"quick_prompts": service.QuickPrompts,
		"visibility":    h.svc.Shell.Visibility(),
	}
}

func (h *DashboardHandler) ChatStateHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatView(false))
}

func (h *DashboardHandler) ChatSendHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, h.chatView(false))
		return
	}
	if !h.svc.Chat.Send(c.Request.Context(), req.Message) {
		c.JSON(http.StatusConflict, h.chatView(false))
		return
	}
	c.JSON(http.StatusOK, h.chatView(true))
}

func (h *DashboardHandler) ChatQuickHandler(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quick prompt index must be a number"})
		return
	}
	accepted, err := h.svc.Chat.SendQuick(c.Request.Context(), index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !accepted {
		c.JSON(http.StatusConflict, h.chatView(false))
		return
	}
	c.JSON(http.StatusOK, h.chatView(true))
}
