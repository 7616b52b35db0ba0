package main

import (
	"log"

	"asistencia/internal/config"
	"asistencia/internal/database"
	"asistencia/internal/handlers"
	"asistencia/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	// Con esto un GET a un endpoint solo-POST responde 405, no 404
	router.HandleMethodNotAllowed = true

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Content-Length", "Authorization"},
	}))

	authHandler := handlers.NewAuthHandler(cfg)
	importHandler := handlers.NewImportHandler()
	studentHandler := handlers.NewStudentHandler()
	attendanceHandler := handlers.NewAttendanceHandler()
	dashboardHandler := handlers.NewDashboardHandler()
	statsHandler := handlers.NewStatsHandler()
	reportHandler := handlers.NewReportHandler()
	exportHandler := handlers.NewExportHandler()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/auth/me", authHandler.Me)

			// Carga de nómina
			protected.POST("/importar", importHandler.Upload)
			protected.POST("/importar/wipe", importHandler.Wipe)

			// Listado y acciones de alumnos
			protected.GET("/alumnos", studentHandler.List)
			protected.POST("/alumnos", studentHandler.Action)
			protected.GET("/cursos", studentHandler.ListCourses)

			// Asistencia mensual
			protected.GET("/asistencia", attendanceHandler.MonthlyView)
			protected.POST("/asistencia", attendanceHandler.BulkSave)
			protected.POST("/asistencia/autosave", attendanceHandler.AutosaveAttendance)
			protected.POST("/asistencia/dias", attendanceHandler.AutosaveClassDays)

			// Dashboard, estadísticas y reporte
			protected.GET("/dashboard", dashboardHandler.Get)
			protected.GET("/estadisticas", statsHandler.GetMonth)
			protected.GET("/reporte", reportHandler.GetMonth)

			// Exportación xlsx
			protected.GET("/exportar", exportHandler.Workbook)
		}
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
