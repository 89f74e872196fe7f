package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "peerlend/internal/adapter/http"
	"peerlend/internal/adapter/middleware"
	"peerlend/internal/adapter/notify"
	"peerlend/internal/adapter/repository/mysql"
	"peerlend/internal/config"
	accountDomain "peerlend/internal/domain/account"
	loanDomain "peerlend/internal/domain/loan"
	walletDomain "peerlend/internal/domain/wallet"
	"peerlend/internal/infrastructure/cache"
	"peerlend/internal/infrastructure/db"
	accountuc "peerlend/internal/usecase/account"
	fundinguc "peerlend/internal/usecase/funding"
	loanuc "peerlend/internal/usecase/loan"
	portfoliouc "peerlend/internal/usecase/portfolio"
	repaymentuc "peerlend/internal/usecase/repayment"
	sweepuc "peerlend/internal/usecase/sweep"
	walletuc "peerlend/internal/usecase/wallet"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(
		&accountDomain.Account{},
		&accountDomain.InvestorProfile{},
		&accountDomain.BorrowerProfile{},
		&walletDomain.Wallet{},
		&walletDomain.Transaction{},
		&loanDomain.Loan{},
		&loanDomain.Investment{},
		&loanDomain.LoanPayment{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	txm := mysql.NewGormUoW(gdb)
	sink := notify.NewRedisSink(rdb, cfg.EventChannel)

	ledger := walletuc.NewLedger(txm)
	accounts := accountuc.NewUsecase(txm)
	loans := loanuc.NewUsecase(txm)
	funding := fundinguc.NewUsecase(txm, sink)
	repayment := repaymentuc.NewUsecase(txm, sink, cfg.PlatformOwnerID)
	sweeper := sweepuc.NewUsecase(txm, repayment, sink)
	portfolio := portfoliouc.NewUsecase(txm)

	base := httpadp.NewHandler()
	accountH := httpadp.NewAccountHandler(accounts)
	walletH := httpadp.NewWalletHandler(ledger)
	loanH := httpadp.NewLoanHandler(loans, funding, repayment)
	opsH := httpadp.NewOpsHandler(sweeper, portfolio)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idem := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)

	e.GET("/health", base.Health)

	e.POST("/accounts", accountH.Register)
	e.GET("/accounts/:account_id", accountH.Get)

	e.POST("/wallets/:owner_id/deposit", walletH.Deposit, idem)
	e.POST("/wallets/:owner_id/withdraw", walletH.Withdraw, idem)
	e.GET("/wallets/:owner_id", walletH.Statement)

	e.POST("/loans", loanH.CreateLoan, idem)
	e.GET("/loans/:loan_id", loanH.GetLoan)
	e.GET("/loans/:loan_id/schedule", loanH.GetSchedule)
	e.POST("/loans/:loan_id/invest", loanH.Invest, idem)
	e.POST("/loans/:loan_id/repay", loanH.Repay, idem)
	e.POST("/loans/:loan_id/cancel", loanH.Cancel, idem)
	e.POST("/loans/:loan_id/autopay", loanH.SetAutoPay)

	e.POST("/sweeps", opsH.RunSweep)
	e.GET("/investors/:investor_id/portfolio", opsH.Portfolio)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
