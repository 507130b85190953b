package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"levfin_model/pkg/core/assumption"
	"levfin_model/pkg/core/config"
	"levfin_model/pkg/core/dealmodel"
	"levfin_model/pkg/core/logger"
	"levfin_model/pkg/core/projection"
	"levfin_model/pkg/core/store"
)

// errViolations marks a check run that found broken invariants.
var errViolations = errors.New("projection invariants violated")

type options struct {
	mode      string
	data      string
	file      string
	strict    bool
	configDir string
	dealID    string
	name      string
	modelID   string
	publish   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("calc-engine", flag.ContinueOnError)
	fs.StringVar(&o.mode, "mode", "project", "Mode: project, check, normalize, save or published")
	fs.StringVar(&o.data, "data", "", "Assumptions payload (JSON or HJSON)")
	fs.StringVar(&o.file, "file", "", "Read assumptions from a file, or - for stdin")
	fs.BoolVar(&o.strict, "strict", false, "Require full five-year driver arrays")
	fs.StringVar(&o.configDir, "config", "", "Directory holding engine.yaml")
	fs.StringVar(&o.dealID, "deal", "", "Deal id (save)")
	fs.StringVar(&o.name, "name", "", "Model name (save)")
	fs.StringVar(&o.modelID, "id", "", "Model id (save to replace, published to read)")
	fs.BoolVar(&o.publish, "publish", false, "Publish the model after saving")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	var dirs []string
	if opts.configDir != "" {
		dirs = append(dirs, opts.configDir)
	}
	cfg, err := config.Load(dirs...)
	if err != nil {
		return err
	}

	log, err := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	mode, err := assumption.ParseMode(cfg.Engine.Mode)
	if err != nil {
		return err
	}
	if opts.strict {
		mode = assumption.ModeStrict
	}
	engine := projection.NewProjectionEngine(mode, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch opts.mode {
	case "project":
		a, err := readAssumptions(opts, stdin)
		if err != nil {
			return err
		}
		res, err := engine.Run(a)
		if err != nil {
			return err
		}
		return writeJSON(stdout, res)

	case "check":
		a, err := readAssumptions(opts, stdin)
		if err != nil {
			return err
		}
		res, err := engine.Run(a)
		if err != nil {
			return err
		}
		return runChecks(stdout, res)

	case "normalize":
		a, err := readAssumptions(opts, stdin)
		if err != nil {
			return err
		}
		if err := assumption.Validate(a); err != nil {
			return err
		}
		n, err := assumption.Normalize(a, mode)
		if err != nil {
			return err
		}
		return writeJSON(stdout, n)

	case "save":
		a, err := readAssumptions(opts, stdin)
		if err != nil {
			return err
		}
		id, err := parseID(opts.modelID, true)
		if err != nil {
			return err
		}
		svc, closeFn, err := newService(ctx, cfg, engine, log)
		if err != nil {
			return err
		}
		defer closeFn()

		m, err := svc.SaveDraft(ctx, id, opts.dealID, opts.name, a)
		if err != nil {
			return err
		}
		if opts.publish {
			if m, err = svc.Publish(ctx, m.ID); err != nil {
				return err
			}
		}
		return writeJSON(stdout, m)

	case "published":
		svc, closeFn, err := newService(ctx, cfg, engine, log)
		if err != nil {
			return err
		}
		defer closeFn()

		if opts.modelID == "" {
			m, err := svc.PublishedForDeal(ctx, opts.dealID)
			if err != nil {
				return err
			}
			return writeJSON(stdout, m)
		}
		id, err := parseID(opts.modelID, false)
		if err != nil {
			return err
		}
		res, err := svc.PublishedResult(ctx, id)
		if err != nil {
			return err
		}
		return writeJSON(stdout, res)

	default:
		return fmt.Errorf("unknown mode: %s", opts.mode)
	}
}

func runChecks(w io.Writer, res projection.ProjectionResult) error {
	violations := projection.CheckInvariants(res)
	if len(violations) == 0 {
		fmt.Fprintf(w, "Success: %d rows pass all invariant checks\n", len(res.Projections))
		return nil
	}
	for _, v := range violations {
		fmt.Fprintln(w, v.String())
	}
	return fmt.Errorf("%w: %d found", errViolations, len(violations))
}

func readAssumptions(opts options, stdin io.Reader) (assumption.Assumptions, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case opts.data != "":
		data = []byte(opts.data)
	case opts.file == "-":
		data, err = io.ReadAll(stdin)
	case opts.file != "":
		data, err = os.ReadFile(opts.file)
	default:
		return assumption.Assumptions{}, fmt.Errorf("no data provided: use -data or -file")
	}
	if err != nil {
		return assumption.Assumptions{}, fmt.Errorf("read assumptions: %w", err)
	}
	return assumption.DecodeLenient(data)
}

func parseID(s string, optional bool) (uuid.UUID, error) {
	if s == "" {
		if optional {
			return uuid.Nil, nil
		}
		return uuid.Nil, fmt.Errorf("model id is required")
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid model id %q: %w", s, err)
	}
	return id, nil
}

// newService uses Postgres when a database URL is configured and local files
// otherwise. The Redis cache is optional; a cache that cannot be reached is
// skipped with a warning.
func newService(ctx context.Context, cfg *config.Config, engine *projection.ProjectionEngine, log logger.Logger) (*dealmodel.Service, func(), error) {
	var (
		repo    store.Repository
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.URL != "" {
		if err := store.InitDB(ctx, cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		closers = append(closers, store.Close)
		if err := store.EnsureSchema(ctx, store.GetPool()); err != nil {
			closeAll()
			return nil, nil, err
		}
		repo = store.NewModelRepo(store.GetPool())
	} else {
		fileRepo, err := store.NewFileRepo(cfg.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("no database configured, using file store", map[string]interface{}{"dir": cfg.Store.Dir})
		repo = fileRepo
	}

	var cache *store.PublishedCache
	if cfg.Redis.Addr != "" {
		client, err := store.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Warn("published cache disabled", nil)
		} else {
			closers = append(closers, func() { client.Close() })
			cache = store.NewPublishedCache(client, cfg.Cache.TTL)
		}
	}

	return dealmodel.NewService(engine, repo, cache, log), closeAll, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
