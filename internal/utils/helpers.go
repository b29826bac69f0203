package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/senyabanana/freelance-service/internal/models"
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// SendJSONResponse отправляет успешный ответ в формате JSON.
func SendJSONResponse(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println(err)
	}
}

// HandleServiceError переводит ошибку сервиса в HTTP-ответ: типизированные
// ошибки несут свой статус, все прочие становятся 500 без деталей.
func HandleServiceError(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	logger.Println(err)
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	SendErrorResponse(w, http.StatusInternalServerError, fallback)
}
