package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/confirm"
	"github.com/odyssey-erp/celtis-pos/internal/i18n"
	"github.com/odyssey-erp/celtis-pos/internal/money"
	"github.com/odyssey-erp/celtis-pos/internal/navigation"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
	"github.com/odyssey-erp/celtis-pos/internal/toast"
)

const helpText = `commands:
  go <sell|parked|history>     switch screen
  show                         redraw the current screen
  add <product> [addon...]     add a product to the sale
  qty <line#> <n>              set a line quantity (0 removes)
  rm <line#>                   remove a line
  note <text>                  set the sale note
  park | new | clear           park, start over, wipe everything
  pay <cash|card>              settle the sale
  resume <draft#> | del <draft#>
  lang <en|ar>                 switch language
  quit`

// Deps are the stores a Register drives.
type Deps struct {
	Sales      *pos.Store
	Catalog    *catalog.Store
	Translator *i18n.Translator
	Toasts     *toast.Center
	Currency   string
}

// Register is a line-oriented front end for one till.
type Register struct {
	Deps
	dialog *confirm.Dialog
	router *navigation.Router
	in     *bufio.Scanner
	out    io.Writer
	seen   map[string]bool
}

// NewRegister wires the leave-sale guard to a terminal confirmation dialog.
func NewRegister(deps Deps, in io.Reader, out io.Writer) *Register {
	dialog := confirm.NewDialog()
	return &Register{
		Deps:   deps,
		dialog: dialog,
		router: navigation.NewRouter(nil, navigation.LeaveSaleGuard(deps.Sales, dialog, deps.Translator)),
		in:     bufio.NewScanner(in),
		out:    out,
		seen:   make(map[string]bool),
	}
}

// Run reads commands until quit, EOF or ctx ends.
func (r *Register) Run(ctx context.Context) error {
	r.render()
	for {
		r.printf("%s> ", r.router.Current())
		line, ok := r.readLine()
		if !ok {
			return r.in.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := r.exec(ctx, line); quit {
			return nil
		}
		r.flushToasts()
	}
}

func (r *Register) readLine() (string, bool) {
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func (r *Register) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *Register) t(key string, vars i18n.Vars) string {
	return r.Translator.T(key, vars)
}

func (r *Register) money(cents int64) string {
	return money.Format(cents, string(r.Translator.Locale()), r.Currency)
}

// withDialog runs fn while answering any question it opens from the input.
func (r *Register) withDialog(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()
	for {
		select {
		case err := <-done:
			return err
		case opts := <-r.dialog.Opened():
			r.printf("[%s] %s\n%s\n%s / %s [y/N] ", opts.Variant, opts.Title, opts.Message, opts.ConfirmLabel, opts.CancelLabel)
			answer, ok := r.readLine()
			if ok && strings.EqualFold(answer, "y") {
				r.dialog.Confirm()
			} else {
				r.dialog.Cancel()
			}
		}
	}
}

func (r *Register) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		r.printf("%s\n", helpText)
	case "show":
		r.render()
	case "go":
		r.navigate(ctx, strings.Join(args, ""))
	case "add":
		r.add(ctx, args)
	case "qty":
		r.quantity(ctx, args)
	case "rm":
		if line, ok := r.lineArg(args); ok {
			r.Sales.RemoveLine(ctx, line.ID)
			r.render()
		}
	case "note":
		r.Sales.SetNote(ctx, strings.TrimSpace(strings.TrimPrefix(line, cmd)))
	case "new":
		r.Sales.StartNewSale(ctx)
		r.render()
	case "park":
		if !r.Sales.ParkActiveSale(ctx) {
			r.Toasts.Danger(r.t("nothingToPark", nil))
			break
		}
		r.Toasts.Success(r.t("saleParked", nil))
	case "pay":
		r.pay(ctx, args)
	case "resume":
		if draft, ok := r.draftArg(args); ok {
			r.Sales.ResumeDraft(ctx, draft.ID)
			r.Toasts.Success(r.t("draftResumed", nil))
			r.navigate(ctx, string(navigation.RouteSell))
		}
	case "del":
		r.deleteDraft(ctx, args)
	case "clear":
		r.clear(ctx)
	case "lang":
		r.setLocale(ctx, args)
	default:
		r.printf("unknown command %q, try help\n", cmd)
	}
	return false
}

func (r *Register) navigate(ctx context.Context, path string) {
	err := r.withDialog(ctx, func(ctx context.Context) error {
		_, err := r.router.Navigate(ctx, path)
		return err
	})
	switch {
	case errors.Is(err, navigation.ErrCancelled):
	case err != nil:
		r.printf("%v\n", err)
	default:
		r.render()
	}
}

func (r *Register) add(ctx context.Context, args []string) {
	if len(args) == 0 {
		r.printf("usage: add <product> [addon...]\n")
		return
	}
	product, ok := r.Catalog.Product(args[0])
	if !ok {
		r.printf("unknown product %s\n", args[0])
		return
	}
	var mods []catalog.Addon
	for _, id := range args[1:] {
		addon, ok := product.Addon(id)
		if !ok {
			r.printf("unknown addon %s\n", id)
			return
		}
		mods = append(mods, addon)
	}
	r.Sales.AddLine(ctx, product, mods)
	r.render()
}

func (r *Register) quantity(ctx context.Context, args []string) {
	if len(args) != 2 {
		r.printf("usage: qty <line#> <n>\n")
		return
	}
	line, ok := r.lineArg(args[:1])
	if !ok {
		return
	}
	n, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		r.printf("invalid quantity %q\n", args[1])
		return
	}
	r.Sales.SetLineQuantity(ctx, line.ID, n)
	r.render()
}

func (r *Register) pay(ctx context.Context, args []string) {
	if len(args) != 1 || !pos.PaymentMethod(args[0]).Valid() {
		r.printf("usage: pay <cash|card>\n")
		return
	}
	paid, ok := r.Sales.PayActiveSale(ctx, pos.PaymentMethod(args[0]))
	if !ok {
		r.Toasts.Danger(r.t("nothingToPay", nil))
		return
	}
	r.Toasts.Success(r.t("salePaid", i18n.Vars{"amount": r.money(paid.Payment.AmountCents)}))
}

func (r *Register) deleteDraft(ctx context.Context, args []string) {
	draft, ok := r.draftArg(args)
	if !ok {
		return
	}
	var confirmed bool
	_ = r.withDialog(ctx, func(ctx context.Context) error {
		var err error
		confirmed, err = r.dialog.Ask(ctx, confirm.Options{
			Title:        r.t("deleteDraftConfirm", nil),
			ConfirmLabel: r.t("delete", nil),
			CancelLabel:  r.t("cancel", nil),
		})
		return err
	})
	if confirmed {
		r.Sales.DeleteDraft(ctx, draft.ID)
		r.Toasts.Show(r.t("draftDeleted", nil))
	}
}

func (r *Register) clear(ctx context.Context) {
	var confirmed bool
	_ = r.withDialog(ctx, func(ctx context.Context) error {
		var err error
		confirmed, err = r.dialog.Ask(ctx, confirm.Options{
			Title:        r.t("clearAllConfirm", nil),
			Message:      r.t("clearAllMessage", nil),
			ConfirmLabel: r.t("confirm", nil),
			CancelLabel:  r.t("cancel", nil),
			Variant:      confirm.VariantDanger,
		})
		return err
	})
	if confirmed {
		r.Sales.ClearAllData(ctx)
		r.Toasts.Show(r.t("dataCleared", nil))
	}
}

func (r *Register) setLocale(ctx context.Context, args []string) {
	if len(args) != 1 {
		r.printf("usage: lang <en|ar>\n")
		return
	}
	if err := r.Translator.SetLocale(ctx, i18n.Locale(args[0])); err != nil {
		r.printf("%v\n", err)
		return
	}
	r.render()
}

// lineArg resolves a 1-based line number of the active sale.
func (r *Register) lineArg(args []string) (pos.LineItem, bool) {
	items := r.Sales.ActiveSale().Items
	idx, ok := r.indexArg(args, len(items))
	if !ok {
		return pos.LineItem{}, false
	}
	return items[idx], true
}

// draftArg resolves a 1-based draft number.
func (r *Register) draftArg(args []string) (pos.Sale, bool) {
	drafts := r.Sales.Drafts()
	idx, ok := r.indexArg(args, len(drafts))
	if !ok {
		return pos.Sale{}, false
	}
	return drafts[idx], true
}

func (r *Register) indexArg(args []string, n int) (int, bool) {
	if len(args) != 1 {
		r.printf("expected one number\n")
		return 0, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		r.printf("no entry %s\n", args[0])
		return 0, false
	}
	return i - 1, true
}

func (r *Register) flushToasts() {
	visible := make(map[string]bool)
	for _, t := range r.Toasts.List() {
		visible[t.ID] = true
		if r.seen[t.ID] {
			continue
		}
		r.printf("(%s) %s\n", t.Tone, t.Message)
	}
	r.seen = visible
}
