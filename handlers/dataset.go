package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attritioninsight/dataset"
	"attritioninsight/service"
)

// UploadDatasetHandler replaces the dataset
// @Summary      Upload a dataset
// @Description  Replaces the current dataset with an uploaded CSV or XLSX file. Conversations in flight finish on the dataset they started with.
// @Tags         Dataset
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV or XLSX file"
// @Success      200   {object}  map[string]interface{}  "Summary of the new dataset"
// @Failure      400   {object}  map[string]string       "Missing or unreadable file"
// @Failure      413   {object}  map[string]string       "File too large"
// @Router       /api/upload-dataset [post]
func (h *Handlers) UploadDatasetHandler(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to open file: %v", err)})
		return
	}
	defer src.Close()

	frame, err := service.ReadDataset(file.Filename, src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to read dataset: %v", err)})
		return
	}
	if frame.Rows() == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dataset has no rows"})
		return
	}

	h.data.Swap(frame, file.Filename)
	h.log.Info("dataset replaced",
		zap.String("file", file.Filename),
		zap.Int("rows", frame.Rows()),
		zap.Int("columns", frame.Width()))

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Loaded %d rows from %s", frame.Rows(), file.Filename),
		"summary": dataset.Summarize(frame),
	})
}

// DatasetInfoHandler describes the current dataset
// @Summary      Describe the dataset
// @Tags         Dataset
// @Produce      json
// @Success      200  {object}  models.DatasetInfo
// @Router       /api/dataset [get]
func (h *Handlers) DatasetInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.data.Info())
}
