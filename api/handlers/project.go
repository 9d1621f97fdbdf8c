package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/housing-valuator/pkg/config"
)

// Settings resolves dotted configuration keys.
type Settings interface {
	Get(key string, def interface{}) interface{}
}

// ProjectSettingKeys are the effective settings shown on the project page.
var ProjectSettingKeys = []string{
	"model.max_iter",
	"model.learning_rate",
	"model.test_size",
	"data_cleaning.price_min",
	"data_cleaning.price_max",
	"data_cleaning.area_min",
	"data_cleaning.area_max",
	"luxury_score.luxury_districts",
	"luxury_score.luxury_types",
}

type ProjectHandler struct {
	project  config.ProjectConfig
	source   BundleSource
	settings Settings
}

func NewProjectHandler(project config.ProjectConfig, source BundleSource, settings Settings) *ProjectHandler {
	return &ProjectHandler{project: project, source: source, settings: settings}
}

type ProjectResponse struct {
	Name       string `json:"name"`
	Course     string `json:"course,omitempty"`
	Author     string `json:"author,omitempty"`
	ModelRunID string `json:"model_run_id,omitempty"`
	TrainedAt  string `json:"trained_at,omitempty"`
	Rows       int    `json:"rows"`
	Districts  int    `json:"districts"`

	Settings map[string]interface{} `json:"settings,omitempty"`
}

func (h *ProjectHandler) Info(c *gin.Context) {
	resp := ProjectResponse{
		Name:   h.project.Name,
		Course: h.project.Course,
		Author: h.project.Author,
	}

	if h.source != nil {
		if b := h.source.Current(); b.IsLoaded() {
			m := b.Manifest()
			resp.ModelRunID = m.RunID
			if !m.TrainedAt.IsZero() {
				resp.TrainedAt = m.TrainedAt.Format(time.RFC3339)
			}
			resp.Rows = len(b.RawData())
			resp.Districts = len(b.Districts())
		}
	}

	if h.settings != nil {
		resp.Settings = make(map[string]interface{}, len(ProjectSettingKeys))
		for _, key := range ProjectSettingKeys {
			if v := h.settings.Get(key, nil); v != nil {
				resp.Settings[key] = v
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}
