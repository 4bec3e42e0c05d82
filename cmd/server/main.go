package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	internalserver "github.com/taskdeck/taskdeck/internal/server"
	corehandlers "github.com/taskdeck/taskdeck/modules/core/handlers"
	corepersistence "github.com/taskdeck/taskdeck/modules/core/infrastructure/persistence"
	corecontrollers "github.com/taskdeck/taskdeck/modules/core/presentation/controllers"
	coreservices "github.com/taskdeck/taskdeck/modules/core/services"
	taskhandlers "github.com/taskdeck/taskdeck/modules/tasks/handlers"
	taskpersistence "github.com/taskdeck/taskdeck/modules/tasks/infrastructure/persistence"
	taskcontrollers "github.com/taskdeck/taskdeck/modules/tasks/presentation/controllers"
	taskservices "github.com/taskdeck/taskdeck/modules/tasks/services"
	"github.com/taskdeck/taskdeck/pkg/configuration"
	"github.com/taskdeck/taskdeck/pkg/eventbus"
	"github.com/taskdeck/taskdeck/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	cancel()
	if err != nil {
		log.Fatalf("failed to create connection pool: %v", err)
	}
	defer pool.Close()

	bus := eventbus.NewEventPublisher(logger)
	corehandlers.RegisterMembershipEventHandlers(bus, logger)
	taskhandlers.RegisterTaskEventHandlers(bus, logger)

	runner := corepersistence.NewTxRunner()

	membershipRepo := corepersistence.NewMembershipRepository()
	organizationRepo := corepersistence.NewOrganizationRepository()
	userRepo := corepersistence.NewUserRepository()

	membershipService := coreservices.NewMembershipService(membershipRepo, runner, bus)
	organizationService := coreservices.NewOrganizationService(organizationRepo, membershipRepo, runner, bus)
	userService := coreservices.NewUserService(userRepo, runner)

	taskRepo := taskpersistence.NewTaskRepository()
	coordinator := taskservices.NewCoordinator(taskRepo, runner)
	policy := taskservices.NewAuthorizationPolicy(membershipService)
	taskService := taskservices.NewTaskService(
		taskRepo,
		policy,
		coordinator,
		taskpersistence.NewAuditRecorder(),
		bus,
		logger,
	)

	srv := internalserver.Default(&internalserver.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Pool:          pool,
		Controllers: []server.Controller{
			corecontrollers.NewUserAPIController(userService),
			corecontrollers.NewOrganizationAPIController(organizationService, membershipService),
			taskcontrollers.NewTaskAPIController(taskService),
		},
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("listening on %s\n", conf.SocketAddress)
	if err := srv.Start(runCtx, conf.SocketAddress, conf.ShutdownTimeout); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
