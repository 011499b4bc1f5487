package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/MarcoPoloResearchLab/aexsite/internal/auth"
	"github.com/MarcoPoloResearchLab/aexsite/internal/config"
	"github.com/MarcoPoloResearchLab/aexsite/internal/logging"
	sitemcp "github.com/MarcoPoloResearchLab/aexsite/internal/mcp"
	"github.com/MarcoPoloResearchLab/aexsite/internal/render"
	"github.com/MarcoPoloResearchLab/aexsite/internal/routemap"
	"github.com/MarcoPoloResearchLab/aexsite/internal/slug"
)

const (
	formatHTML     = "html"
	formatMarkdown = "markdown"

	toolingTimeout = 2 * time.Minute
)

var errUnknownFormat = errors.New("format must be html or markdown")

// withApplication loads configuration and builds the application for a tooling command.
func withApplication(cmd *cobra.Command, run func(ctx context.Context, app *application) error) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	logger, err := logging.NewCLILogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	app, err := newApplication(appConfig, logger, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	return run(cmd.Context(), app)
}

func newRoutesCommand() *cobra.Command {
	var includeHidden bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the resolved route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *application) error {
				table, err := app.service.Routes(ctx)
				if err != nil {
					return err
				}
				routes := table.Entries()
				if includeHidden {
					routes = table.All()
				}

				writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(writer, "SLUG\tPAGE ID\tSOURCE\tTITLE")
				for _, route := range routes {
					fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", route.Slug, route.PageID, route.Source, route.Title)
				}
				return writer.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "Include hidden routes")
	return cmd
}

func newRenderCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "render <slug>",
		Short: "Render one page to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != formatHTML && format != formatMarkdown {
				return fmt.Errorf("%w: %q", errUnknownFormat, format)
			}
			return withApplication(cmd, func(ctx context.Context, app *application) error {
				page, err := app.service.PageBySlug(ctx, args[0])
				if err != nil {
					return err
				}
				if page == nil {
					return fmt.Errorf("page %s not found", slug.Normalize(args[0]))
				}

				table, err := app.service.Routes(ctx)
				if err != nil {
					return err
				}
				nodes := app.renderer.Render(page.Blocks, page.Slug, app.renderer.Index(table.RouteRefs()))
				return writeRendered(cmd.OutOrStdout(), format, page.Title, nodes)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatHTML, "Output format (html, markdown)")
	return cmd
}

func writeRendered(out io.Writer, format, title string, nodes []*html.Node) error {
	var (
		body string
		err  error
	)
	if format == formatMarkdown {
		body, err = render.Markdown(nodes)
		if err == nil {
			body = "# " + title + "\n\n" + body
		}
	} else {
		body, err = render.RenderHTML(nodes)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, body)
	return err
}

func newRouteMapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routemap",
		Short: "Maintain the static route map",
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the configured store with the entries of a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *application) error {
				entries, err := routemap.NewFileStore(args[0]).Load(ctx)
				if err != nil {
					return err
				}
				entries = routemap.Clean(entries)
				if err := app.store.Save(ctx, entries); err != nil {
					return err
				}
				app.logger.Info("route map imported", zap.String("file", args[0]), zap.Int("entries", len(entries)))
				return nil
			})
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the configured store to a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *application) error {
				entries, err := app.store.Load(ctx)
				if err != nil {
					return err
				}
				if err := routemap.NewFileStore(args[0]).Save(ctx, entries); err != nil {
					return err
				}
				app.logger.Info("route map exported", zap.String("file", args[0]), zap.Int("entries", len(entries)))
				return nil
			})
		},
	}

	var sitemapURL string
	seedCmd := &cobra.Command{
		Use:   "seed-sitemap",
		Short: "Add every path of a sitemap to the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *application) error {
				target := strings.TrimSpace(sitemapURL)
				if target == "" {
					target = app.config.SiteURL + "/sitemap.xml"
				}
				ctx, cancel := context.WithTimeout(ctx, toolingTimeout)
				defer cancel()

				seeded, err := routemap.SeedFromSitemap(ctx, http.DefaultClient, target)
				if err != nil {
					return err
				}
				existing, err := app.store.Load(ctx)
				if err != nil {
					return err
				}
				merged := routemap.Clean(append(existing, seeded...))
				if err := app.store.Save(ctx, merged); err != nil {
					return err
				}
				app.logger.Info("route map seeded",
					zap.String("sitemap", target),
					zap.Int("seeded", len(seeded)),
					zap.Int("entries", len(merged)))
				return nil
			})
		},
	}
	seedCmd.Flags().StringVar(&sitemapURL, "sitemap", "", "Sitemap URL (defaults to <site.url>/sitemap.xml)")

	var liveSiteURL string
	fillCmd := &cobra.Command{
		Use:   "fill-ids",
		Short: "Recover missing page ids from a running site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *application) error {
				base := strings.TrimSpace(liveSiteURL)
				if base == "" {
					base = app.config.SiteURL
				}
				entries, err := app.store.Load(ctx)
				if err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(ctx, toolingTimeout)
				defer cancel()

				writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(writer, "SLUG\tSTATUS\tPAGE ID")
				for _, result := range routemap.FillFromLiveSite(ctx, http.DefaultClient, base, entries) {
					fmt.Fprintf(writer, "%s\t%s\t%s\n", result.Slug, result.Status, result.PageID)
				}
				if err := writer.Flush(); err != nil {
					return err
				}
				return app.store.Save(ctx, entries)
			})
		},
	}
	fillCmd.Flags().StringVar(&liveSiteURL, "site", "", "Live site URL (defaults to site.url)")

	cmd.AddCommand(importCmd, exportCmd, seedCmd, fillCmd)
	return cmd
}

func newTokenCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the revalidate endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			authorizer := auth.NewRevalidateAuthorizer(auth.RevalidateAuthorizerConfig{Secret: appConfig.RevalidateSecret})
			token, expiresAt, err := authorizer.IssueToken(ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "Token lifetime")
	return cmd
}

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve site content to agents over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *application) error {
				return mcpserver.ServeStdio(sitemcp.NewServer(app.service, app.renderer))
			})
		},
	}
}
