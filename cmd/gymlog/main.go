package main

// Terminal client for logging a workout against the gymlog service, set by set.

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/logging"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/workoutlog"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const maxSubmitAttempts = 5

func main() {
	baseURL := flag.String("url", "http://localhost:9000", "gymlog service base URL")
	username := flag.String("user", "", "username, prompted when empty")
	routineID := flag.Int("routine", 0, "routine id to log, prompted when zero")
	timezone := flag.String("tz", "Local", "time zone of the typed start and completion times")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    *logLevel,
	})

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		log.Fatalf("load time zone %s: %s", *timezone, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := workoutlog.NewClient(*baseURL, 15*time.Second)
	p := newPrompter(bufio.NewReader(os.Stdin), os.Stdout)

	if *username == "" {
		*username = p.ask("Usuario", "")
	}
	password := os.Getenv("GYMLOG_PASSWORD")
	if password == "" {
		password = p.ask("Contraseña", "")
	}

	session, err := client.Login(ctx, *username, password)
	if err != nil {
		log.Fatalf("login: %s", err)
	}
	defer func() {
		if err := client.Logout(context.Background()); err != nil {
			log.Warnf("logout: %s", err)
		}
	}()

	if *routineID == 0 {
		*routineID, err = p.pickRoutine(ctx, client)
		if err != nil {
			log.Errorf("pick routine: %s", err)
			return
		}
	}

	if err := run(ctx, p, client, session.Identity, *routineID, loc); err != nil {
		log.Errorf("log workout: %s", err)
	}
}

func run(
	ctx context.Context,
	p *prompter,
	client *workoutlog.Client,
	identity auth.Identity,
	routineID int,
	loc *time.Location,
) error {
	// the cli keeps its own registry, nothing scrapes it
	metricsManager := metrics.NewManager("gymlog", "cli", prometheus.NewRegistry())
	workflow := workoutlog.NewWorkflow(client, client, loc, metricsManager)

	routine, form, err := workflow.Load(ctx, identity, routineID)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	timer := workoutlog.NewRestTimer(ctx, nil)
	defer timer.Stop()

	form = p.fillForm(form, timer)

	sub := workoutlog.Submission{
		StartedAt:     p.ask("Inicio", workoutlog.FormatLocalTime(startedAt, loc)),
		MarkCompleted: true,
		CompletedAt:   p.ask("Fin", workoutlog.FormatLocalTime(time.Now(), loc)),
		Notes:         p.ask("Notas", ""),
	}

	for attempt := 1; ; attempt++ {
		workout, err := workflow.Submit(ctx, identity, routine, form, sub)
		if err == nil {
			summary, err := client.WorkoutSummary(ctx, workout.ID)
			if err != nil {
				return fmt.Errorf("workout %d saved, summary: %w", workout.ID, err)
			}
			p.printSummary(summary)
			return nil
		}

		var validationErr *workoutlog.ValidationError
		if !errors.As(err, &validationErr) || attempt >= maxSubmitAttempts {
			return err
		}

		// let the user fix the offending value, the form is kept as is
		p.say("%s", validationErr.Message)
		switch {
		case validationErr.SetIndex >= 0:
			form = p.fixSet(form, validationErr.Kind, validationErr.ExerciseIndex, validationErr.SetIndex)
		case validationErr.Kind == workoutlog.KindInvalidStart:
			sub.StartedAt = p.ask("Inicio", sub.StartedAt)
		case validationErr.Kind == workoutlog.KindInvalidCompletion,
			validationErr.Kind == workoutlog.KindCompletedBeforeStart:
			sub.StartedAt = p.ask("Inicio", sub.StartedAt)
			sub.CompletedAt = p.ask("Fin", sub.CompletedAt)
		default:
			return err
		}
	}
}
