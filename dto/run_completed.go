package dto

import "github.com/customeros/mailvault/internal/models"

type RunCompleted struct {
	Run *models.ProcessingRun `json:"run"`
}
