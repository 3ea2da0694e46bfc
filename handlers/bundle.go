package handlers

import (
	"regwizard/metrics"
	"regwizard/services/theme"
	"regwizard/services/wizard"
	"regwizard/utils"

	"go.uber.org/zap"
)

// HandlerBundle groups the endpoint handlers and their collaborators.
type HandlerBundle struct {
	Wizard  wizard.WizardService
	Theme   *theme.Service
	Metrics *metrics.Metrics

	// LiveOrigins lists the cross-origin hosts allowed to open the live channel.
	LiveOrigins []string
}

func NewHandlerBundle(wiz wizard.WizardService, themes *theme.Service, m *metrics.Metrics) *HandlerBundle {
	if err := RegisterValidators(); err != nil {
		utils.GetLogger().Error("Custom binding validators unavailable", zap.Error(err))
	}
	return &HandlerBundle{Wizard: wiz, Theme: themes, Metrics: m}
}

func (hb *HandlerBundle) recordExport(format string) {
	if hb.Metrics != nil {
		hb.Metrics.RecordExport(format)
	}
}
