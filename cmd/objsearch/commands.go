package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/jacoelho/objsearch/internal/config"
	"github.com/jacoelho/objsearch/internal/document"
	"github.com/jacoelho/objsearch/internal/exit"
	"github.com/jacoelho/objsearch/internal/jsonview"
	"github.com/jacoelho/objsearch/internal/logging"
	"github.com/jacoelho/objsearch/internal/object"
	"github.com/jacoelho/objsearch/internal/output"
	"github.com/jacoelho/objsearch/internal/ratelimit"
	"github.com/jacoelho/objsearch/internal/search"
	"github.com/jacoelho/objsearch/internal/store"
)

var errCanceled = errors.New("search canceled")

// app carries the state prepared by the root command for its subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "objsearch",
		Short: "Find keys in PDF-like object graphs",
		Long: `objsearch walks a document's object graph from its trailer, following
indirect references, and reports every path that leads to a key.

Documents are YAML or JSON files, or stores created with "objsearch import".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.searchCommand(),
		a.treeCommand(),
		a.selectCommand(),
		a.importCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.Setup(cmd.ErrOrStderr(), level, cfg.NoColor)
	return nil
}

func (a *app) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search KEY",
		Short: "Print every path that ends at KEY",
		Example: `  objsearch search Type -i doc.yaml
  objsearch search Length -s ./db --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			format, _ := a.cfg.OutputFormat()

			src, err := a.openSource(cmd)
			if err != nil {
				return err
			}
			defer src.close()

			engine := search.New(src.resolver, a.cfg.SearchOptions(a.logger)...)
			result := engine.Search(cmd.Context(), src.trailer, args[0])

			opts := output.Options{Color: !a.cfg.NoColor && !color.NoColor}
			if err := output.WriteResult(cmd.OutOrStdout(), format, result, opts); err != nil {
				return err
			}

			switch {
			case result.Canceled:
				return fmt.Errorf("%w after %d paths", errCanceled, len(result.Paths))
			case len(result.Paths) == 0:
				return fmt.Errorf("key %q: %w", args[0], exit.ErrNoMatch)
			}
			return nil
		},
	}
}

func (a *app) treeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the object graph as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			src, err := a.openSource(cmd)
			if err != nil {
				return err
			}
			defer src.close()

			return output.WriteTree(cmd.OutOrStdout(), src.trailer, src.resolver, output.TreeOptions{
				MaxDepth: a.cfg.MaxDepth,
			})
		},
	}
}

func (a *app) selectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select EXPR",
		Short: "Evaluate a JSONPath expression against the graph",
		Example: `  objsearch select '$.Root.Pages.Kids[*].Type' -i doc.yaml
  objsearch select "$['Root']['Pages']['Count']" -s ./db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			src, err := a.openSource(cmd)
			if err != nil {
				return err
			}
			defer src.close()

			data := jsonview.Materialize(src.trailer, src.resolver, a.cfg.MaxDepth)
			values, err := jsonview.Select(data, args[0])
			if errors.Is(err, jsonview.ErrNotFound) {
				return fmt.Errorf("%v: %w", err, exit.ErrNoMatch)
			}
			if err != nil {
				return err
			}

			for _, value := range values {
				encoded, err := json.MarshalIndent(value, "", "  ")
				if err != nil {
					return fmt.Errorf("encode selection: %w", err)
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n", encoded); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "import",
		Short:   "Copy a document into an object store",
		Example: `  objsearch import -i doc.yaml -s ./db`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateImport(); err != nil {
				return err
			}

			doc, err := document.Load(a.cfg.Input)
			if err != nil {
				return err
			}

			cfg := store.DefaultConfig(a.cfg.Store)
			cfg.Logger = a.logger
			s, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.Import(doc)
			if err != nil {
				return err
			}

			a.logger.Info("import finished", "objects", n, "store", a.cfg.Store)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d objects into %s\n", n, a.cfg.Store)
			return err
		},
	}
}

// source is an opened object graph: its trailer and a resolver for its
// references.
type source struct {
	trailer  *object.Dictionary
	resolver object.Resolver
	close    func() error
}

func (a *app) openSource(cmd *cobra.Command) (*source, error) {
	src, err := a.open()
	if err != nil {
		return nil, err
	}

	if a.cfg.ResolveRate > 0 {
		limiter := ratelimit.New(a.cfg.ResolveRate)
		a.logger.Debug("throttling resolution", "per_second", limiter.Limit())
		src.resolver = limiter.Wrap(cmd.Context(), src.resolver)
	}
	return src, nil
}

func (a *app) open() (*source, error) {
	if a.cfg.Input != "" {
		doc, err := document.Load(a.cfg.Input)
		if err != nil {
			return nil, err
		}
		return &source{
			trailer:  doc.Trailer(),
			resolver: doc,
			close:    func() error { return nil },
		}, nil
	}

	cfg := store.ReadOnlyConfig(a.cfg.Store)
	cfg.Logger = a.logger
	s, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}
	trailer, err := s.Trailer()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%s: %w", a.cfg.Store, err)
	}
	return &source{
		trailer:  trailer,
		resolver: s,
		close:    s.Close,
	}, nil
}
