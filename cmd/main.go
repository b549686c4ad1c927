package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jonborges/menu4you/internal/router"
	"github.com/jonborges/menu4you/pkg/api"
	"github.com/jonborges/menu4you/pkg/cart"
	"github.com/jonborges/menu4you/pkg/config"
	"github.com/jonborges/menu4you/pkg/events"
	"github.com/jonborges/menu4you/pkg/fallback"
	"github.com/jonborges/menu4you/pkg/global"
	"github.com/jonborges/menu4you/pkg/modal"
	"github.com/jonborges/menu4you/pkg/mongo"
	"github.com/jonborges/menu4you/pkg/notify"
	"github.com/jonborges/menu4you/pkg/rabbitmq"
	"github.com/jonborges/menu4you/pkg/redis"
	"github.com/jonborges/menu4you/pkg/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using environment only: %v", err)
	}
	cfg := config.LoadConfig()

	var cleanup closers
	defer cleanup.closeAll()

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	rc := redis.RedisClient(cfg)
	if err := redis.Ping(ctx, rc); err != nil {
		log.Fatalf("Error connecting to storage: %v", err)
	}
	cleanup.add("redis", rc.Close)
	kv := redis.NewStorage(rc, cfg.StorageNamespace)

	mirrors := fallback.NewKVStore(kv)
	if cfg.FallbackBackend == config.FallbackMongo {
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Error connecting to MongoDB: %v", err)
		}
		cleanup.add("mongo", func() error {
			shutdownCtx, cancel := global.GetDefaultTimer()
			defer cancel()
			return client.Disconnect(shutdownCtx)
		})
		mirrors = mongo.NewFallbackStore(client.Database(cfg.MongoDatabase))
	}
	if err := fallback.PurgeStaleMirrors(ctx, mirrors); err != nil {
		log.Printf("Warning: %v", err)
	}

	bus := events.NewBus()
	conn := events.NewConnectivity(bus)
	cleanup.add("connectivity", func() error { conn.Close(); return nil })
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			log.Printf("Warning: events will not be forwarded: %v", err)
		} else {
			cleanup.add("rabbitmq", func() error { mq.Close(); return nil })
			fwd := rabbitmq.NewForwarder(mq.Channel(), cfg.RabbitMQQueue, bus)
			// Registered after the connection so buffered events drain first.
			cleanup.add("forwarder", func() error { fwd.Close(); return nil })
		}
	}

	sess := session.NewManager(session.NewStore(kv), bus)
	if err := sess.Restore(ctx); err != nil {
		log.Printf("Warning: could not restore session: %v", err)
	}

	client := api.NewClient(cfg.APIURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		api.WithTokenSource(sess),
		api.WithBus(bus),
		api.WithFallback(fallback.NewUsers(mirrors)),
		api.WithRetry(cfg.APIRetries, cfg.APIBackoff),
	)

	c := cart.New(client, cart.NewTableStore(kv))
	if err := c.Restore(ctx); err != nil {
		log.Printf("Warning: could not restore table binding: %v", err)
	}

	toasts := notify.NewQueue(cfg.ToastDuration, cfg.ToastMax)
	cleanup.add("toasts", func() error { toasts.Close(); return nil })

	h := router.NewHandler(router.Deps{
		API:          client,
		Session:      sess,
		Guests:       session.NewGuestStore(kv),
		Cart:         c,
		Toasts:       toasts,
		Modal:        modal.New(),
		Connectivity: conn,
		Ping:         func(ctx context.Context) error { return redis.Ping(ctx, rc) },
	})
	r := router.InitEngine(cfg)
	router.InitializeRoutes(r, h)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	stop, release := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer release()

	go func() {
		log.Printf("Server is running on port %s, backend %s", cfg.Port, cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to run server: %v", err)
			release()
		}
	}()
	<-stop.Done()

	log.Println("Shutting down")
	shutdownCtx, cancelShutdown := global.GetDefaultTimer()
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
}
