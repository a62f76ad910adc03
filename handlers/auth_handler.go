package handlers

import (
	"net/http"

	"github.com/Dosada05/sport-events/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @Summary Регистрация пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body services.RegisterInput true "Данные пользователя"
// @Success 201 {object} services.AuthResult
// @Failure 409 {object} map[string]string "Email или username заняты"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Login godoc
// @Summary Вход по username или email
// @Tags auth
// @Accept json
// @Produce json
// @Param input body services.LoginInput true "Учетные данные"
// @Success 200 {object} services.AuthResult
// @Failure 401 {object} map[string]string "Неверные учетные данные"
// @Failure 403 {object} map[string]string "Аккаунт отключен"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
