package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/metrics"
	"alcyxob/liftlog/internal/repository"
	"alcyxob/liftlog/internal/storage"
	"alcyxob/liftlog/internal/volume"

	log "github.com/sirupsen/logrus"
)

const exportContentType = "text/csv"

var exportHeader = []string{
	"workout_id", "date", "status", "exercise", "target_muscle",
	"set_number", "reps", "weight", "intensity_type", "notes", "volume",
}

// Export is an uploaded CSV file and the temporary link to it.
type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ExportService interface {
	ExportWorkouts(ctx context.Context, userID string) (*Export, error)
}

type exportService struct {
	workoutRepo repository.WorkoutRepository
	files       storage.FileStorage // nil when object storage is not configured
	metrics     *metrics.Manager
	today       Clock
	now         func() time.Time
}

func NewExportService(workoutRepo repository.WorkoutRepository, files storage.FileStorage, metricsManager *metrics.Manager, today Clock) ExportService {
	return &exportService{
		workoutRepo: workoutRepo,
		files:       files,
		metrics:     metricsManager,
		today:       today,
		now:         time.Now,
	}
}

// ExportWorkouts writes one CSV row per set of every workout, uploads the
// file and returns a presigned download link.
func (s *exportService) ExportWorkouts(ctx context.Context, userID string) (*Export, error) {
	if s.files == nil {
		return nil, storage.ErrNotConfigured
	}

	workouts, err := s.workoutRepo.List(ctx, userID, repository.WorkoutFilter{Order: repository.Ascending})
	if err != nil {
		return nil, err
	}
	today := s.today()
	for i := range workouts {
		workouts[i].ApplyDefaults(today)
	}

	body, rows, err := WriteWorkoutsCSV(workouts)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := fmt.Sprintf("exports/%s/workouts-%s.csv", userID, now.Format("20060102T150405Z"))
	if err := s.files.PutObject(ctx, key, exportContentType, bytes.NewReader(body)); err != nil {
		return nil, fmt.Errorf("uploading export: %w", err)
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		// nobody can reach the file without a link
		if delErr := s.files.DeleteObject(ctx, key); delErr != nil {
			log.WithError(delErr).WithField("key", key).Warn("could not remove unreachable export")
		}
		return nil, fmt.Errorf("presigning export: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CounterExports.Inc()
	}
	log.WithFields(log.Fields{"userID": userID, "key": key, "rows": rows}).Info("workouts exported")
	return &Export{
		Key:       key,
		URL:       url,
		Rows:      rows,
		ExpiresAt: now.Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

// WriteWorkoutsCSV renders workouts as CSV and returns the number of data rows.
func WriteWorkoutsCSV(workouts []domain.Workout) ([]byte, int, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, 0, err
	}

	rows := 0
	for _, wk := range workouts {
		for _, we := range wk.Exercises {
			name, muscle := "", volume.Muscle(we)
			if we.Exercise != nil {
				name = we.Exercise.Name
			}
			for _, set := range we.Sets {
				record := []string{
					wk.ID,
					wk.Date.String(),
					string(wk.Status),
					name,
					muscle,
					strconv.Itoa(set.SetNumber),
					strconv.Itoa(set.Reps),
					strconv.FormatFloat(set.Weight, 'f', -1, 64),
					set.IntensityType,
					set.Notes,
					strconv.FormatFloat(float64(set.Reps)*set.Weight, 'f', -1, 64),
				}
				if err := w.Write(record); err != nil {
					return nil, 0, err
				}
				rows++
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), rows, nil
}
