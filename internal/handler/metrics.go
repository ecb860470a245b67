package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sceneRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_scene_requests_total",
			Help: "Total number of scene continuation requests by status.",
		},
		[]string{"status"},
	)

	imageTransformationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_image_transformations_total",
			Help: "Total number of image-to-image transformation attempts by status.",
		},
		[]string{"status"},
	)
)
