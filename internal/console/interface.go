package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"page-marker/internal/config"
	"page-marker/internal/entity"
	"page-marker/internal/usecase"
	"page-marker/pkg/logg"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var errExit = errors.New("exit")

type Interface struct {
	config   *config.Config
	logger   *zap.Logger
	usecase  *usecase.Service
	in       io.Reader
	out      io.Writer
	ctx      context.Context
	cancel   context.CancelFunc
	sigChan  chan os.Signal
	stopOnce sync.Once
	done     chan struct{}
}

type Params struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Usecase *usecase.Service
}

func NewInterface(params Params) *Interface {
	ctx, cancel := context.WithCancel(context.Background())

	return &Interface{
		config:  params.Config,
		logger:  params.Logger.With(zap.String(logg.Layer, "Console")),
		usecase: params.Usecase,
		in:      os.Stdin,
		out:     os.Stdout,
		ctx:     ctx,
		cancel:  cancel,
		sigChan: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// Done is closed when the read loop returns.
func (i *Interface) Done() <-chan struct{} {
	return i.done
}

func (i *Interface) Start() error {
	defer close(i.done)

	i.printBanner()
	i.printHelp()

	signal.Notify(i.sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(i.sigChan)

	go func() {
		select {
		case <-i.sigChan:
			fmt.Fprintln(i.out, "\n\nInterrupt received, stopping...")
			i.Stop()
		case <-i.ctx.Done():
		}
	}()

	scanner := bufio.NewScanner(i.in)

	for {
		if i.ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(i.out, "\n> ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}

			i.logger.Error("Command error", zap.Error(err))
			fmt.Fprintf(i.out, "Error: %v\n", err)
		}
	}
}

// Stop cancels the command in flight and ends the read loop at the next prompt.
func (i *Interface) Stop() error {
	i.stopOnce.Do(func() {
		i.logger.Info("Stopping console interface...")
		i.cancel()
	})

	return nil
}

func (i *Interface) handleCommand(input string) error {
	cmd, err := parseCommand(input)
	if err != nil {
		return err
	}

	marks := i.usecase.Marks

	switch cmd.name {
	case "help", "h":
		i.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintln(i.out, "Shutting down...")

		return errExit
	case "open":
		res, err := marks.Open(i.ctx, cmd.arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(i.out, "Opened %s\n", res.Message)
	case "mark":
		result, err := marks.Mark(i.ctx)
		if err != nil {
			return err
		}
		i.printMark(result)
	case "unmark":
		if err := marks.Unmark(i.ctx); err != nil {
			return err
		}
		fmt.Fprintln(i.out, "Overlays removed")
	case "annotate":
		result, err := marks.Annotate(i.ctx, cmd.arg)
		if err != nil {
			return err
		}
		i.printMark(result)
		fmt.Fprintf(i.out, "Annotated screenshot saved to %s\n", result.ScreenshotPath)
	case "list", "ls":
		i.printElements(marks.Elements())
	case "click":
		if _, err := marks.Click(i.ctx, cmd.index); err != nil {
			return err
		}
		fmt.Fprintf(i.out, "Clicked [%d]\n", cmd.index)
	case "type":
		if _, err := marks.Type(i.ctx, cmd.index, cmd.arg); err != nil {
			return err
		}
		fmt.Fprintf(i.out, "Typed into [%d]\n", cmd.index)
	case "scroll":
		if _, err := marks.Scroll(i.ctx, cmd.direction, cmd.index); err != nil {
			return err
		}
		fmt.Fprintf(i.out, "Scrolled %s\n", cmd.direction)
	case "wait":
		res, err := marks.Wait(i.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(i.out, "Waited %s\n", res.Message)
	case "back":
		if _, err := marks.GoBack(i.ctx); err != nil {
			return err
		}
		fmt.Fprintln(i.out, "Went back")
	case "restart":
		res, err := marks.Restart(i.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(i.out, "Restarted at %s\n", res.Message)
	case "shot":
		path, err := marks.Screenshot(i.ctx, cmd.arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(i.out, "Screenshot saved to %s\n", path)
	}

	return nil
}

func (i *Interface) printMark(result *entity.MarkResult) {
	fmt.Fprintf(i.out, "Marked %d elements on %s\n", result.Labels, result.URL)
	i.printElements(result.Elements)
}

// printElements lists one line per overlay number: the aria-label, or the text if there is none.
func (i *Interface) printElements(elements []entity.MarkedElement) {
	if len(elements) == 0 {
		fmt.Fprintln(i.out, "No marked elements")

		return
	}

	seen := make(map[int]struct{}, len(elements))
	for _, el := range elements {
		if _, ok := seen[el.Index]; ok {
			continue
		}
		seen[el.Index] = struct{}{}

		fmt.Fprintf(i.out, "%d (<%s>): %s\n", el.Index, el.Type, describe(el))
	}
}

func describe(el entity.MarkedElement) string {
	if strings.TrimSpace(el.AriaLabel) != "" {
		return el.AriaLabel
	}

	return el.Text
}

func (i *Interface) printBanner() {
	banner := `
+-----------------------------------------------------------+
|                                                           |
|                      Page Marker                          |
|                                                           |
|   Numbered overlays on every interactable page element   |
|                                                           |
+-----------------------------------------------------------+
`
	fmt.Fprintln(i.out, banner)
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  open <url>            - Navigate to a page
  mark                  - Highlight interactable elements and list them
  unmark                - Remove the highlights
  annotate [path]       - Draw the highlights onto a screenshot instead of the page
  list, ls              - List the elements of the last mark
  click <i>             - Click element i
  type <i> <text>       - Replace the content of element i with text and press Enter
  scroll up|down [i]    - Scroll the window, or element i
  wait                  - Wait a few seconds
  back                  - Go back one page
  restart               - Return to the start page
  shot [path]           - Save a screenshot of the page
  help, h               - Show this help message
  exit, quit, q         - Exit the application

Element numbers come from the last mark or annotate. Actions that may change the page
drop the current marks; run mark again afterwards.
`
	fmt.Fprintln(i.out, help)
}
