package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	cancelAppointmentHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_available_slots"
	getBlockStatusHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_block_status"
	getEffectiveHoursHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_effective_hours"
	getProviderAppointmentsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_provider_appointments"
	providerSettingsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/provider_settings"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/update_appointment_status"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/config"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/cache"
	appointmentRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/appointment"
	hoursRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/hours"
	policyRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/policy"
	workingDayRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/workingday"
	"github.com/m04kA/SMC-AvailabilityService/internal/jobs/autocomplete"
	appointmentsService "github.com/m04kA/SMC-AvailabilityService/internal/service/appointments"
	blockingService "github.com/m04kA/SMC-AvailabilityService/internal/service/blocking"
	scheduleService "github.com/m04kA/SMC-AvailabilityService/internal/service/schedule"
	settingsService "github.com/m04kA/SMC-AvailabilityService/internal/service/settings"
	createAppointmentUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/logger"
	"github.com/m04kA/SMC-AvailabilityService/pkg/metrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AvailabilityService...")

	// Часовой пояс уже проверен в config.Validate
	location, _ := cfg.Schedule.Location()
	log.Info("Provider timezone: %s", location)

	// Инициализируем метрики (если включены)
	var (
		metricsCollector *metrics.Metrics
		dbRecorder       dbmetrics.Recorder
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		dbRecorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, dbRecorder, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	workingDayRepository := workingDayRepo.NewRepository(wrappedDB)

	var (
		hoursStore  cache.HoursRepository  = hoursRepo.NewRepository(wrappedDB)
		policyStore cache.PolicyRepository = policyRepo.NewRepository(wrappedDB)
	)

	// Redis кэш настроек (необязателен)
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unreachable at %s, settings will be read from the database: %v", cfg.Redis.Addr, err)
		}
		cancel()

		hoursStore = cache.NewHours(hoursStore, redisClient, cfg.Redis.TTL(), metricsCollector, log)
		policyStore = cache.NewPolicy(policyStore, redisClient, cfg.Redis.TTL(), metricsCollector, log)
		log.Info("Settings cache enabled (redis=%s, ttl=%s)", cfg.Redis.Addr, cfg.Redis.TTL())
	}

	clock := &createAppointmentUC.RealTimeProvider{}

	// Инициализируем сервисы
	scheduleSvc := scheduleService.NewService(
		hoursStore,
		workingDayRepository,
		cfg.Schedule.DefaultSlotIntervalMinutes,
		metricsCollector,
		log,
	)
	blockingSvc := blockingService.NewService(
		policyStore,
		appointmentRepository,
		location,
		metricsCollector,
		log,
	)
	appointmentsSvc := appointmentsService.NewService(appointmentRepository, clock, location, log)
	settingsSvc := settingsService.NewService(hoursStore, workingDayRepository, policyStore, log)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleSvc,
		blockingSvc,
		txMgr,
		clock,
		createAppointmentUC.Options{
			Location:       location,
			MaxAdvanceDays: cfg.Schedule.MaxAdvanceDays,
			AutoConfirm:    cfg.Schedule.AutoConfirm,
		},
		metricsCollector,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		scheduleSvc,
		appointmentRepository,
		clock,
		location,
		cfg.Schedule.MaxAdvanceDays,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	getEffectiveHours := getEffectiveHoursHandler.NewHandler(scheduleSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBlockStatus := getBlockStatusHandler.NewHandler(blockingSvc, getBlockStatusHandler.RealTimeProvider{}, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	getProviderAppointments := getProviderAppointmentsHandler.NewHandler(appointmentsSvc, log)
	providerSettings := providerSettingsHandler.NewHandler(settingsSvc, log)

	// Фоновая задача автозавершения записей
	scheduler := cron.New(cron.WithLocation(location))
	if cfg.Jobs.AutocompleteEnabled {
		job := autocomplete.NewJob(
			appointmentRepository,
			autocomplete.RealTimeProvider{},
			location,
			time.Duration(cfg.Jobs.TimeoutSeconds)*time.Second,
			metricsCollector,
			log,
		)
		if _, err := autocomplete.Schedule(scheduler, cfg.Jobs.AutocompleteCron, job); err != nil {
			log.Fatal("Failed to schedule autocomplete job: %v", err)
		}
		scheduler.Start()
		log.Info("Autocomplete job scheduled (%s)", cfg.Jobs.AutocompleteCron)
	}

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/providers/{providerId}/effective-hours",
		getEffectiveHours.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/clients/block-status",
		getBlockStatus.HandleByPhone).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/clients/{clientId}/block-status",
		getBlockStatus.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/business-hours",
		providerSettings.GetBusinessHours).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/special-hours",
		providerSettings.ListSpecialHours).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/working-days/{date}",
		providerSettings.GetWorkingDay).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	createRoute := http.Handler(http.HandlerFunc(createAppointment.Handle))
	if cfg.RateLimit.Enabled {
		createRoute = middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)(createRoute)
		log.Info("Rate limit on appointment creation: %.1f rps, burst %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	protected.Handle("/appointments", createRoute).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/providers/{providerId}/appointments", getProviderAppointments.Handle).Methods(http.MethodGet)

	// --- Настройки мастера ---
	protected.HandleFunc("/providers/{providerId}/business-hours",
		providerSettings.UpdateBusinessHours).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/special-hours/{date}",
		providerSettings.UpsertSpecialHours).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/special-hours/{date}",
		providerSettings.DeleteSpecialHours).Methods(http.MethodDelete)
	protected.HandleFunc("/providers/{providerId}/working-days/{date}",
		providerSettings.UpsertWorkingDay).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/working-days/{date}",
		providerSettings.DeleteWorkingDay).Methods(http.MethodDelete)
	protected.HandleFunc("/providers/{providerId}/cancellation-policy",
		providerSettings.GetPolicy).Methods(http.MethodGet)
	protected.HandleFunc("/providers/{providerId}/cancellation-policy",
		providerSettings.UpdatePolicy).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся текущего прохода задачи
	<-scheduler.Stop().Done()

	close(stopMetricsCh)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}
