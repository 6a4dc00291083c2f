package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kdanyliuk/studyhall/internal/domain"
	redisrepo "github.com/kdanyliuk/studyhall/internal/repository/redis"
	"github.com/kdanyliuk/studyhall/internal/service"
	"github.com/kdanyliuk/studyhall/internal/service/attendance"
	"github.com/kdanyliuk/studyhall/internal/service/members"
	"github.com/kdanyliuk/studyhall/internal/service/seating"
	"github.com/kdanyliuk/studyhall/internal/service/subscriptions"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/staff", handleListStaff(svcs))
		api.POST("/staff", handleRegisterStaff(svcs))

		api.GET("/members", handleListMembers(svcs))
		api.POST("/members", handleRegisterMember(svcs))

		api.POST("/subscriptions", handleActivateSubscription(svcs))
		api.GET("/subscriptions/ledger", handleSubscriptionLedger(svcs))

		api.GET("/zones", handleListZones(svcs))
		api.POST("/zones", handleCreateZone(svcs))
		api.POST("/zones/:id/seats", handleProvisionSeats(svcs))
		api.GET("/seats", handleListSeats(svcs))

		api.POST("/attendance/check-in", handleCheckIn(svcs, idem))
		api.POST("/attendance/check-out", handleCheckOut(svcs))

		api.GET("/reports/attendance", handleAttendanceReport(svcs))
		api.GET("/reports/occupancy", handleOccupancyReport(svcs))
		api.GET("/reports/subscriptions", handleSubscriptionReport(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List staff
// @Success  200  {array}  domain.Staff
// @Router   /api/staff [get]
func handleListStaff(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		staff, err := svcs.Members.ListStaff(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, staff)
	}
}

// @Summary  Register staff
// @Param    req body  RegisterStaffRequest true "payload"
// @Success  201 {object} MessageResponse
// @Failure  409 {object} ErrorResponse "duplicate id or email"
// @Router   /api/staff [post]
func handleRegisterStaff(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterStaffRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		st := domain.Staff{
			ID:               req.ID,
			Name:             req.Name,
			FatherName:       req.FatherName,
			Address:          req.Address,
			State:            req.State,
			Email:            req.Email,
			Contact:          req.Contact,
			BloodGroup:       req.BloodGroup,
			EmergencyContact: req.EmergencyContact,
			Role:             req.Role,
		}
		if err := svcs.Members.RegisterStaff(c.Request.Context(), st, req.Password); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, MessageResponse{Message: "staff registered"})
	}
}

// @Summary  List members with derived subscription and seat state
// @Param    limit  query  int  false "page size"
// @Param    offset query  int  false "offset"
// @Success  200  {array}  domain.MemberOverview
// @Router   /api/members [get]
func handleListMembers(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 0)
		offset := parseIntDefault(c.Query("offset"), 0)

		overviews, err := svcs.Members.ListMembers(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, overviews)
	}
}

// @Summary  Register member
// @Param    req body  RegisterMemberRequest true "payload"
// @Success  201 {object} MessageResponse
// @Failure  409 {object} ErrorResponse "duplicate id or email"
// @Router   /api/members [post]
func handleRegisterMember(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		m := domain.Member{
			ID:               req.ID,
			Name:             req.Name,
			FatherName:       req.FatherName,
			Address:          req.Address,
			State:            req.State,
			Email:            req.Email,
			Contact:          req.Contact,
			BloodGroup:       req.BloodGroup,
			EmergencyContact: req.EmergencyContact,
		}
		if err := svcs.Members.RegisterMember(c.Request.Context(), m); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, MessageResponse{Message: "member registered"})
	}
}

// @Summary  Activate subscription (expires any prior one)
// @Param    req body  ActivateSubscriptionRequest true "payload"
// @Success  201 {object} ActivateSubscriptionResponse
// @Failure  404 {object} ErrorResponse "member not found"
// @Router   /api/subscriptions [post]
func handleActivateSubscription(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActivateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sub, err := svcs.Subscriptions.Activate(
			c.Request.Context(),
			req.MemberID,
			req.AmountCents,
			req.Months,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, ActivateSubscriptionResponse{
			SubscriptionID: sub.ID,
			StartDate:      sub.StartDate.Format("2006-01-02"),
			EndDate:        sub.EndDate.Format("2006-01-02"),
		})
	}
}

// @Summary  Subscription ledger, newest first
// @Param    limit  query  int  false "page size"
// @Param    offset query  int  false "offset"
// @Success  200  {array}  domain.SubscriptionWithMember
// @Router   /api/subscriptions/ledger [get]
func handleSubscriptionLedger(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 0)
		offset := parseIntDefault(c.Query("offset"), 0)

		ledger, err := svcs.Subscriptions.Ledger(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ledger)
	}
}

// @Summary  List zones
// @Success  200  {array}  domain.Zone
// @Router   /api/zones [get]
func handleListZones(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		zones, err := svcs.Seating.ListZones(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, zones)
	}
}

// @Summary  Create zone
// @Param    req body  CreateZoneRequest true "payload"
// @Success  201 {object} CreateZoneResponse
// @Router   /api/zones [post]
func handleCreateZone(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateZoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		id, err := svcs.Seating.CreateZone(c.Request.Context(), req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateZoneResponse{ZoneID: id})
	}
}

// @Summary  Bulk provision seats in a zone section
// @Param    id  path  int  true  "Zone ID"
// @Param    req body  ProvisionSeatsRequest true "payload"
// @Success  201 {object} ProvisionSeatsResponse
// @Failure  404 {object} ErrorResponse "zone not found"
// @Router   /api/zones/{id}/seats [post]
func handleProvisionSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		zoneID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ProvisionSeatsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		seats, err := svcs.Seating.ProvisionSeats(
			c.Request.Context(),
			zoneID,
			req.Section,
			req.Count,
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		ids := make([]string, 0, len(seats))
		for _, s := range seats {
			ids = append(ids, s.ID)
		}
		c.JSON(http.StatusCreated, ProvisionSeatsResponse{Created: len(seats), SeatIDs: ids})
	}
}

// @Summary  List seats with zone names
// @Param    limit  query  int  false "page size"
// @Param    offset query  int  false "offset"
// @Success  200  {array}  domain.SeatWithZone
// @Router   /api/seats [get]
func handleListSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 0)
		offset := parseIntDefault(c.Query("offset"), 0)

		seats, err := svcs.Seating.ListSeats(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, seats, "public, max-age=15", true)
	}
}

// @Summary  Check in a member (idempotent via Idempotency-Key)
// @Param    req body  CheckInRequest true "payload"
// @Header   200 {string} Idempotency-Key "echo"
// @Success  200 {object} CheckInResponse
// @Failure  403 {object} ErrorResponse "no valid subscription"
// @Failure  409 {object} ErrorResponse "already checked in / no seat available"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /api/attendance/check-in [post]
func handleCheckIn(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemCheckIn(req.MemberID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusOK,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusOK,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		rlKey := "ip:" + c.ClientIP()

		seatID, err := svcs.Attendance.CheckIn(c.Request.Context(), req.MemberID, rlKey)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if isRateLimitedErr(err) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: err.Error()},
				)
				return
			}
			respondErr(c, err)
			return
		}

		resp := CheckInResponse{Message: "checked in", SeatID: seatID}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Check out a member
// @Param    req body  CheckOutRequest true "payload"
// @Success  200 {object} MessageResponse
// @Failure  409 {object} ErrorResponse "not checked in"
// @Router   /api/attendance/check-out [post]
func handleCheckOut(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckOutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if _, err := svcs.Attendance.CheckOut(c.Request.Context(), req.MemberID); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, MessageResponse{Message: "checked out"})
	}
}

// @Summary  Attendance log, newest first
// @Param    limit  query  int  false "page size"
// @Param    offset query  int  false "offset"
// @Success  200  {array}  domain.AttendanceEntry
// @Router   /api/reports/attendance [get]
func handleAttendanceReport(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 0)
		offset := parseIntDefault(c.Query("offset"), 0)

		entries, err := svcs.Reports.AttendanceLog(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

// @Summary  Occupancy counters
// @Success  200  {object}  domain.OccupancyCounts
// @Router   /api/reports/occupancy [get]
func handleOccupancyReport(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := svcs.Reports.Occupancy(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, counts, "public, max-age=15", true)
	}
}

// @Summary  Subscription counters
// @Success  200  {object}  domain.SubscriptionStats
// @Router   /api/reports/subscriptions [get]
func handleSubscriptionReport(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svcs.Reports.SubscriptionStats(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, stats, "public, max-age=60", true)
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func isRateLimitedErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "rate limited")
}

// respondErr maps service sentinels to HTTP responses. Every client-state
// failure keeps its own status and message; anything unmapped is an internal
// error and storage details stay out of the body.
func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// members service
	case errors.Is(err, members.ErrDuplicateID):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "identifier already registered"})
		return
	case errors.Is(err, members.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "email already registered"})
		return
	case errors.Is(err, members.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	// subscriptions service
	case errors.Is(err, subscriptions.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "member not found"})
		return
	case errors.Is(err, subscriptions.ErrInvalidTerm):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid subscription term"})
		return
	// seating service
	case errors.Is(err, seating.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "zone not found"})
		return
	case errors.Is(err, seating.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	// attendance service
	case errors.Is(err, attendance.ErrIneligibleMember):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "no active subscription"})
		return
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already checked in"})
		return
	case errors.Is(err, attendance.ErrNoSeatAvailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no seats available"})
		return
	case errors.Is(err, attendance.ErrNotCheckedIn):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not checked in"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
