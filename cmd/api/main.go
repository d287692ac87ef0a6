package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"todoList/internal/app"
	"todoList/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Загрузка конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg).Init(ctx)
	if err != nil {
		log.Fatalf("Инициализация приложения: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("Приложение завершилось с ошибкой: %v", err)
		os.Exit(1)
	}
}
