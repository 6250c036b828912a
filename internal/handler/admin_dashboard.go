package handler

import (
	"context"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bodasuite/boda-suite/internal/repository"
)

// DashboardStats handles GET /dashboard/stats. The four aggregates are
// independent reads, so they are fired concurrently and joined before
// responding.
func (h *AdminHandler) DashboardStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		wg        sync.WaitGroup
		counts    repository.GuestStatusCounts
		collected float64
		pending   float64
		occupancy repository.Occupancy
		errs      [4]error
	)

	wg.Add(4)
	go func() { defer wg.Done(); counts, errs[0] = h.Stats.GuestCounts(ctx) }()
	go func() { defer wg.Done(); collected, errs[1] = h.Stats.TotalCollected(ctx) }()
	go func() { defer wg.Done(); pending, errs[2] = h.Stats.TotalPending(ctx) }()
	go func() { defer wg.Done(); occupancy, errs[3] = h.Stats.RoomOccupancy(ctx) }()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al calcular estadísticas"})
		}
	}

	ocupacion := 0
	if occupancy.TotalCupos > 0 {
		ocupacion = int(math.Round(float64(occupancy.Asignados) / float64(occupancy.TotalCupos) * 100))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalInvitados":      counts.Total,
		"ocupacionHotel":      ocupacion,
		"totalRecaudado":      collected,
		"totalPendiente":      pending,
		"invitadosPagados":    counts.Pagados,
		"invitadosParciales":  counts.Parciales,
		"invitadosPendientes": counts.Pendientes,
	})
}
