// Package main 是应用程序入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dumeirei/innflow-backend/internal/common/cache"
	"github.com/dumeirei/innflow-backend/internal/common/config"
	"github.com/dumeirei/innflow-backend/internal/common/crypto"
	"github.com/dumeirei/innflow-backend/internal/common/database"
	"github.com/dumeirei/innflow-backend/internal/common/logger"
	"github.com/dumeirei/innflow-backend/internal/common/metrics"
	"github.com/dumeirei/innflow-backend/internal/common/tracing"
	"github.com/dumeirei/innflow-backend/internal/models"
	propertyService "github.com/dumeirei/innflow-backend/internal/service/property"
	"github.com/dumeirei/innflow-backend/pkg/mqtt"
)

const version = "1.0.0"

func main() {
	// .env 仅用于本地开发，缺失时忽略
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Failed to load .env: %v\n", err)
	}

	// 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.GetLogger()

	log.Info("Starting InnFlow Backend",
		zap.String("version", version),
		zap.String("env", cfg.Server.Mode),
	)

	// 初始化数据库连接
	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	if cfg.Business.Booking.SeedDemoData {
		password := cfg.Business.Booking.SeedPassword
		if password == "" {
			if password, err = crypto.GenerateRandomString(12); err != nil {
				log.Fatal("Failed to generate seed password", zap.Error(err))
			}
			log.Warn("No seed password configured, generated one for demo staff", zap.String("password", password))
		}
		seeder := propertyService.NewSeeder(db, password, cfg.Crypto.BcryptCost)
		if _, err := seeder.Seed(context.Background()); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	// Redis 可选，不可用时限流、预订锁和看板缓存降级
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.Init(&cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, running without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("Redis connected successfully")
		}
	}

	// 初始化追踪
	tracer, err := tracing.Init(&tracing.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Server.Mode,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		log.Warn("Failed to init tracing", zap.Error(err))
	}

	metrics.Init(cfg.Metrics.Namespace)

	// 门禁 MQTT 可选
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient = connectMQTT(cfg, log)
	}

	// 设置 Gin 模式
	gin.SetMode(cfg.GinMode())

	// 创建 Gin 引擎
	engine := gin.New()

	// 设置路由
	app := setupRouter(engine, cfg, log, db, redisClient, mqttClient)

	if cfg.Business.Scheduler.Enabled {
		app.scheduler.Start()
	}

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	app.scheduler.Stop()
	// 等待已提交的确认通知发送完毕
	app.notifications.Wait()

	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if tracer != nil {
		if err := tracer.Shutdown(ctx); err != nil {
			log.Error("Failed to flush traces", zap.Error(err))
		}
	}

	// 关闭数据库连接
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}

	log.Info("Server exited")
}

// connectMQTT 连接门禁 Broker 并订阅控制器回执，失败时返回 nil
func connectMQTT(cfg *config.Config, log *zap.Logger) *mqtt.Client {
	client := mqtt.NewClient(mqtt.Config{
		Broker:         cfg.MQTT.Broker,
		ClientID:       fmt.Sprintf("%s%d", cfg.MQTT.ClientIDPrefix, time.Now().UnixNano()),
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		KeepAlive:      time.Duration(cfg.MQTT.KeepAlive) * time.Second,
		ConnectTimeout: time.Duration(cfg.MQTT.ConnectTimeout) * time.Second,
		AutoReconnect:  cfg.MQTT.AutoReconnect,
		QoS:            cfg.MQTT.QoS,
		Retained:       cfg.MQTT.Retained,
		Logger:         log,
	})
	if err := client.Connect(); err != nil {
		log.Warn("MQTT unavailable, room access events disabled", zap.Error(err))
		return nil
	}

	ackTopic := mqtt.AckTopic(cfg.MQTT.TopicPrefix)
	err := client.Subscribe(ackTopic, func(topic string, payload []byte) {
		metrics.GetMetrics().RecordMQTTMessage(ackTopic, "in")
		room, ack, err := mqtt.ParseAck(topic, payload)
		if err != nil {
			log.Warn("Invalid access ack", zap.String("topic", topic), zap.Error(err))
			return
		}
		if !ack.Success {
			log.Warn("Room access command failed",
				zap.String("room", room),
				logger.Reference(ack.Reference),
				zap.String("message", ack.Message),
			)
			return
		}
		log.Info("Room access acknowledged", zap.String("room", room), logger.Reference(ack.Reference))
	})
	if err != nil {
		log.Warn("Failed to subscribe access acks", zap.Error(err))
	}
	return client
}
