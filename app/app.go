package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"fabric-digital-system/app/controller"
	"fabric-digital-system/app/router"
	"fabric-digital-system/config"
	"fabric-digital-system/db"
	"fabric-digital-system/repository"
	"fabric-digital-system/service"
)

// Initialize wires the services and controllers and returns the HTTP handler
func Initialize(ctx context.Context, cfg *config.Config) (http.Handler, error) {
	credentials, err := service.CredentialOptions(cfg.CredentialsPath, cfg.CredentialsJSON)
	if err != nil {
		return nil, err
	}

	session, err := service.NewSession(ctx, cfg.RemoteTimeout, credentials...)
	if err != nil {
		return nil, err
	}

	// Submission journal is optional
	var journal repository.SubmissionRepositoryInterface = repository.NopSubmissionRepository{}
	if cfg.DatabaseURL != "" {
		if err := db.InitDB(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repo := repository.NewSubmissionRepository(db.DB)
		if err := repo.EnsureTable(ctx); err != nil {
			return nil, err
		}
		journal = repo
	} else {
		log.Printf("⚠️  DATABASE_URL not set, submissions will not be journaled")
	}

	driveService := service.NewDriveService(session)
	sheetService := service.NewSheetService(session, service.NewSpreadsheetResolver(driveService), cfg.StrictSchema)
	syncService := service.NewCatalogSyncService(driveService, sheetService, service.NewFolderResolver(driveService), journal)
	mirror := service.NewPublicMirrorService(cfg.PublicExportURL, cfg.RemoteTimeout, cfg.PublicCacheSize, cfg.PublicCacheTTL)
	labelService := service.NewLabelService(driveService, cfg.ChromePath)

	// A new row must be visible on the next public read
	onSubmitted := func(code string) {
		if cfg.PublicSheetID != "" {
			mirror.Invalidate(cfg.PublicSheetID)
		}
	}

	controllers := &router.Controllers{
		Fabric: controller.NewFabricController(syncService, controller.FabricDefaults{
			Table:       cfg.SheetName,
			ImageFolder: cfg.ImageFolder,
			OwnerEmail:  cfg.OwnerEmail,
		}, onSubmitted),
		QR:     controller.NewQRController(mirror, cfg.PublicSheetID),
		Public: controller.NewPublicController(mirror, cfg.PublicSheetID),
		Label:  controller.NewLabelController(syncService, labelService, cfg.SheetName),
	}

	return router.NewRouter(controllers), nil
}
