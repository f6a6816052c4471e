package handler

import "tutoros/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Health       *HealthHandler
	Occurrence   *OccurrenceHandler
	Calendar     *CalendarHandler
	Availability *AvailabilityHandler
	Interchange  *InterchangeHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, revoker TokenRevoker, checks map[string]Pinger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(revoker),
		Health:       NewHealthHandler(checks),
		Occurrence:   NewOccurrenceHandler(svc.Occurrence),
		Calendar:     NewCalendarHandler(svc.Calendar),
		Availability: NewAvailabilityHandler(svc.Availability),
		Interchange:  NewInterchangeHandler(svc.Interchange),
		Export:       NewExportHandler(svc.Export),
	}
}
