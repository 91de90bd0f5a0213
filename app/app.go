package app

import (
	"log/slog"
	"time"

	"chikondi-pos/appstate"
	"chikondi-pos/database"
	"chikondi-pos/session"
	"chikondi-pos/syncer"
	"chikondi-pos/validator"
)

// App holds the wired POS core: store manager, repositories, session
// service and the background sync worker. This struct is the central point
// for dependency injection.
type App struct {
	Manager    *database.Manager
	Repo       *database.Repository
	Session    *session.Service
	State      *appstate.Store
	Syncer     *syncer.Syncer
	SyncWorker *syncer.Worker
	Validator  *validator.Validator
	Logger     *slog.Logger
}

// New opens the store, runs migrations and wires every component. The sync
// worker is returned stopped; the caller starts it once online.
func New(dbPath, dataDir, syncAPIURL string, syncInterval time.Duration, logger *slog.Logger) (*App, error) {
	manager := database.NewManager(dbPath)
	db, err := manager.Open()
	if err != nil {
		return nil, err
	}

	repo := database.NewRepository(db)
	state := appstate.NewStore(dataDir)
	sess := session.NewService(repo, state, logger)

	client := syncer.NewClient(syncAPIURL)
	sc := syncer.New(repo, client, logger)
	worker := syncer.NewWorker(sc, syncInterval, logger)

	return &App{
		Manager:    manager,
		Repo:       repo,
		Session:    sess,
		State:      state,
		Syncer:     sc,
		SyncWorker: worker,
		Validator:  validator.New(),
		Logger:     logger,
	}, nil
}

// Close stops background work and releases the store.
func (a *App) Close() error {
	a.SyncWorker.Stop()
	return a.Manager.Close()
}
