package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "lendmitra-backend/internal/adapter/http"
	"lendmitra-backend/internal/adapter/middleware"
	"lendmitra-backend/internal/adapter/repository/mysql"
	"lendmitra-backend/internal/config"
	"lendmitra-backend/internal/infrastructure/cache"
	"lendmitra-backend/internal/infrastructure/db"
	"lendmitra-backend/internal/provider"
	appUC "lendmitra-backend/internal/usecase/application"
	dashboardUC "lendmitra-backend/internal/usecase/dashboard"
	esignUC "lendmitra-backend/internal/usecase/esign"
	mandateUC "lendmitra-backend/internal/usecase/mandate"
	otpUC "lendmitra-backend/internal/usecase/otp"
	verificationUC "lendmitra-backend/internal/usecase/verification"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal(err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}

	// repositories
	appRepo := mysql.NewApplicationRepository(gdb)
	verificationRepo := mysql.NewVerificationRepository(gdb)
	esignRepo := mysql.NewESignRepository(gdb)
	mandateRepo := mysql.NewMandateRepository(gdb)
	consentRepo := mysql.NewConsentRepository(gdb)
	providerCfgRepo := mysql.NewProviderConfigRepository(gdb)
	unit := mysql.NewGormUoW(gdb)

	// provider clients
	kycClient := provider.NewVerificationClient(providerCfgRepo)
	esignClient := provider.NewESignClient(providerCfgRepo)
	paymentsClient := provider.NewPaymentsClient(providerCfgRepo)

	// usecases; tenant org id is injected explicitly
	appUsecase := appUC.NewUsecase(cfg.OrgID, appRepo, unit)
	verificationUsecase := verificationUC.NewUsecase(cfg.OrgID, cfg.Environment, appRepo, verificationRepo, kycClient)
	otpUsecase := otpUC.NewUsecase(cfg.OrgID, consentRepo)
	esignUsecase := esignUC.NewUsecase(cfg.OrgID, cfg.Environment, appRepo, esignRepo, esignClient)
	mandateUsecase := mandateUC.NewUsecase(cfg.OrgID, cfg.Environment, mandateRepo, appRepo, verificationRepo, paymentsClient, unit)
	dashboardUsecase := dashboardUC.NewUsecase(cfg.OrgID, appRepo, verificationRepo, esignRepo, consentRepo)

	// handlers
	h := httpadp.NewHandler()
	appHandler := httpadp.NewApplicationHandler(appUsecase)
	verificationHandler := httpadp.NewVerificationHandler(verificationUsecase)
	otpHandler := httpadp.NewOTPHandler(otpUsecase)
	esignHandler := httpadp.NewESignHandler(esignUsecase)
	mandateHandler := httpadp.NewMandateHandler(mandateUsecase)
	dashboardHandler := httpadp.NewDashboardHandler(dashboardUsecase)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderContentType, echo.HeaderAuthorization,
			"Lm-Request-Id", "Lm-Request-At", "Lm-Caller-Ref",
		},
	}))

	e.GET("/health", h.Health)

	idemp := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	// public flow: scoped by referral code / access token, no session
	pub := e.Group("/public")
	pub.POST("/applications", appHandler.CreateDraft, idemp)
	pub.POST("/verify/pan", verificationHandler.VerifyPAN, idemp)
	pub.POST("/verify/aadhaar", verificationHandler.VerifyAadhaar, idemp)
	pub.POST("/otp/issue", otpHandler.Issue, idemp)
	pub.POST("/otp/verify", otpHandler.Verify, idemp)
	e.GET("/esign/verify/:token", esignHandler.VerifyToken)

	// session-scoped API
	api := e.Group("/api/v1", middleware.Auth(cfg.JWTSecret))
	api.Use(idemp)

	api.GET("/applications/:application_id", appHandler.Get)
	api.POST("/applications/:application_id/stage", appHandler.AdvanceStage)
	api.POST("/applications/:application_id/submit", appHandler.Submit)
	api.POST("/applications/:application_id/cancel", appHandler.Cancel)
	api.POST("/applications/:application_id/decide", appHandler.Decide,
		middleware.RequireRole("admin", "credit_head"))

	api.POST("/verify/bank-account", verificationHandler.VerifyBankAccount)
	api.POST("/verify/ifsc", verificationHandler.VerifyIFSC)
	api.GET("/applications/:application_id/verifications", verificationHandler.List)

	api.POST("/esign/requests", esignHandler.RequestSignature)
	api.GET("/esign/requests/:request_id/status", esignHandler.CheckStatus)
	api.POST("/esign/requests/:request_id/signed", esignHandler.MarkSigned)
	api.GET("/esign/requests/:request_id/audit", esignHandler.AuditTrail)

	api.POST("/mandates", mandateHandler.Create)
	api.GET("/mandates/:mandate_id/status", mandateHandler.CheckStatus)
	api.GET("/applications/:application_id/mandate", mandateHandler.Latest)
	api.POST("/payments/penny-drop", mandateHandler.PennyDrop)
	api.POST("/payments/disburse", mandateHandler.Disburse,
		middleware.RequireRole("admin"))

	api.POST("/consents/withdraw", otpHandler.WithdrawConsent)
	api.GET("/consents/:user_ref", otpHandler.ListConsents)

	admin := api.Group("/dashboard", middleware.RequireRole("admin", "credit_head"))
	admin.GET("/stats", dashboardHandler.Stats)
	admin.GET("/approval-queue", dashboardHandler.ApprovalQueue)
	admin.GET("/applications/:application_id/audit", dashboardHandler.AuditTrail)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s (org=%s env=%s)", addr, cfg.OrgID, cfg.Environment)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
