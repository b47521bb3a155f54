// Команда createsuperuser создает учетную запись администратора магазина.
//
//	go run ./shop-service/cmd/createsuperuser -username admin -email admin@example.com
//
// Недостающие значения запрашиваются в терминале; пароль можно передать через SUPERUSER_PASSWORD.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/pkg/logger"
	"storefront/shop-service/internal/app/shop/config"
	"storefront/shop-service/internal/app/shop/entity"
	"storefront/shop-service/internal/app/shop/repository"
	"storefront/shop-service/internal/app/shop/service"
	"storefront/shop-service/internal/app/shop/validation"
)

func main() {
	username := flag.String("username", "", "username of the superuser")
	email := flag.String("email", "", "email of the superuser")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "User", "last name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init("createsuperuser", cfg.Log.Level)

	in := bufio.NewReader(os.Stdin)
	params := entity.CustomerUserParams{
		Username:  prompt(in, "Username", *username),
		Email:     prompt(in, "Email", *email),
		Password:  prompt(in, "Password", os.Getenv("SUPERUSER_PASSWORD")),
		FirstName: *firstName,
		LastName:  *lastName,
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Токены и файлы здесь не нужны
	accounts := service.NewAccountService(repository.NewStore(db), nil, nil, nil, nil)

	user, err := accounts.CreateSuperuser(context.Background(), params)
	if err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			for field, messages := range fieldErrs.Fields() {
				fmt.Fprintf(os.Stderr, "Error: %s: %s\n", field, strings.Join(messages, " "))
			}
			os.Exit(1)
		}
		logger.Fatal().Err(err).Msg("Failed to create superuser")
	}

	fmt.Printf("Superuser %q created (id %s).\n", user.Account.Username, user.Account.ID)
}

// prompt возвращает value, а если оно пустое - строку, введенную пользователем
func prompt(in *bufio.Reader, label, value string) string {
	if value != "" {
		return value
	}
	fmt.Printf("%s: ", label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
