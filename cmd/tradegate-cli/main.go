package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"tradegate/pkg/tradegate"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: tradegate-cli <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  summary                       Show cash, settlement and total balance\n")
	fmt.Fprintf(os.Stderr, "  positions                     List current holdings\n")
	fmt.Fprintf(os.Stderr, "  orders                        List today's orders\n")
	fmt.Fprintf(os.Stderr, "  history  [-symbol S] [-start D] [-end D]\n")
	fmt.Fprintf(os.Stderr, "  quotes   <symbol>...          Show intraday quotes\n")
	fmt.Fprintf(os.Stderr, "  prices   <symbol>...          Show daily reference prices\n")
	fmt.Fprintf(os.Stderr, "  trades   [-start D] [-end D]  List fills in the window\n")
	fmt.Fprintf(os.Stderr, "  buy      [flags] <symbol>     Place a buy order\n")
	fmt.Fprintf(os.Stderr, "  sell     [flags] <symbol>     Place a sell order\n")
	fmt.Fprintf(os.Stderr, "  update   [-price P] [-qty Q] <order-id>\n")
	fmt.Fprintf(os.Stderr, "  cancel   <order-id>           Cancel an open order\n")
	fmt.Fprintf(os.Stderr, "\nThe gateway address comes from TRADEGATE_URL (default http://localhost:8080).\n")
}

func main() {
	flag.Usage = usage
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("TRADEGATE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := tradegate.NewClient(baseURL)
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "summary":
		err = runSummary(ctx, client)
	case "positions":
		err = runPositions(ctx, client)
	case "orders":
		err = runOrders(ctx, client)
	case "history":
		err = runHistory(ctx, client, os.Args[2:])
	case "quotes":
		err = runQuotes(ctx, client, os.Args[2:])
	case "prices":
		err = runPrices(ctx, client, os.Args[2:])
	case "trades":
		err = runTrades(ctx, client, os.Args[2:])
	case "buy":
		err = runOrder(ctx, client, "buy", os.Args[2:])
	case "sell":
		err = runOrder(ctx, client, "sell", os.Args[2:])
	case "update":
		err = runUpdate(ctx, client, os.Args[2:])
	case "cancel":
		err = runCancel(ctx, client, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runSummary(ctx context.Context, c *tradegate.Client) error {
	s, err := c.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("account:       %s\n", s.Name)
	fmt.Printf("cash:          %.2f\n", s.Cash)
	fmt.Printf("settlement:    %.2f\n", s.Settlement)
	fmt.Printf("total balance: %.2f\n", s.TotalBalance)
	return nil
}

func runPositions(ctx context.Context, c *tradegate.Client) error {
	positions, err := c.Positions(ctx)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		fmt.Println("no positions")
		return nil
	}
	fmt.Printf("%-10s %12s  %s\n", "SYMBOL", "QUANTITY", "CONDITION")
	for _, p := range positions {
		fmt.Printf("%-10s %12.2f  %s\n", p.Symbol, p.Quantity, p.Condition)
	}
	return nil
}

func printOrders(orders []tradegate.Order) {
	fmt.Printf("%-14s %-10s %-4s %10s %10s %10s  %-16s %s\n",
		"ORDER", "SYMBOL", "SIDE", "PRICE", "QTY", "FILLED", "STATUS", "TIME")
	for _, o := range orders {
		fmt.Printf("%-14s %-10s %-4s %10.2f %10.2f %10.2f  %-16s %s\n",
			o.ID, o.Symbol, o.Side, o.Price, o.Quantity, o.FilledQty,
			o.Status, o.Time.Format("15:04:05"))
	}
}

func runOrders(ctx context.Context, c *tradegate.Client) error {
	orders, err := c.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no orders today")
		return nil
	}
	printOrders(orders)
	return nil
}

func runHistory(ctx context.Context, c *tradegate.Client, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	symbol := fs.String("symbol", "", "filter to one symbol")
	start := fs.String("start", time.Now().AddDate(0, 0, -7).Format("2006-01-02"), "window start (YYYY-MM-DD)")
	end := fs.String("end", time.Now().Format("2006-01-02"), "window end (YYYY-MM-DD)")
	fs.Parse(args)

	startDay, endDay, err := parseDates(*start, *end)
	if err != nil {
		return err
	}

	snaps, err := c.OrderHistory(ctx, *symbol, startDay, endDay)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("no journaled snapshots in window")
		return nil
	}
	fmt.Printf("%-20s %-14s %-10s %-4s %10s %10s  %s\n",
		"RECORDED", "ORDER", "SYMBOL", "SIDE", "PRICE", "FILLED", "STATUS")
	for _, s := range snaps {
		fmt.Printf("%-20s %-14s %-10s %-4s %10.2f %10.2f  %s\n",
			s.RecordedAt.Format("2006-01-02 15:04:05"), s.Order.ID, s.Order.Symbol,
			s.Order.Side, s.Order.Price, s.Order.FilledQty, s.Order.Status)
	}
	return nil
}

func runQuotes(ctx context.Context, c *tradegate.Client, symbols []string) error {
	if len(symbols) == 0 {
		return fmt.Errorf("quotes requires at least one symbol")
	}
	quotes, err := c.Quotes(ctx, symbols)
	if err != nil {
		return err
	}
	fmt.Printf("%-10s %10s %10s %10s %10s %10s %10s\n",
		"SYMBOL", "OPEN", "HIGH", "LOW", "CLOSE", "BID", "ASK")
	for _, sym := range sortedKeys(quotes) {
		q := quotes[sym]
		fmt.Printf("%-10s %10.2f %10.2f %10.2f %10.2f %10.2f %10.2f\n",
			sym, q.Open, q.High, q.Low, q.Close, q.BidPrice, q.AskPrice)
	}
	return nil
}

func runPrices(ctx context.Context, c *tradegate.Client, symbols []string) error {
	if len(symbols) == 0 {
		return fmt.Errorf("prices requires at least one symbol")
	}
	prices, err := c.Prices(ctx, symbols)
	if err != nil {
		return err
	}
	fmt.Printf("%-10s %10s %10s %10s\n", "SYMBOL", "CLOSE", "LIMIT UP", "LIMIT DN")
	for _, sym := range sortedKeys(prices) {
		p := prices[sym]
		fmt.Printf("%-10s %10.2f %10.2f %10.2f\n", sym, p.Close, p.LimitUp, p.LimitDown)
	}
	return nil
}

func runTrades(ctx context.Context, c *tradegate.Client, args []string) error {
	fs := flag.NewFlagSet("trades", flag.ExitOnError)
	start := fs.String("start", time.Now().Format("2006-01-02"), "window start (YYYY-MM-DD)")
	end := fs.String("end", time.Now().Format("2006-01-02"), "window end (YYYY-MM-DD)")
	fs.Parse(args)

	startDay, endDay, err := parseDates(*start, *end)
	if err != nil {
		return err
	}

	trades, err := c.Trades(ctx, startDay, endDay)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		fmt.Println("no fills in window")
		return nil
	}
	printOrders(trades)
	return nil
}

func runOrder(ctx context.Context, c *tradegate.Client, side string, args []string) error {
	fs := flag.NewFlagSet(side, flag.ExitOnError)
	qty := fs.Float64("qty", 0, "quantity (lots, or shares with -odd)")
	price := fs.Float64("price", 0, "limit price")
	market := fs.Bool("market", false, "market order")
	best := fs.Bool("best", false, "best-price limit order")
	odd := fs.Bool("odd", false, "odd-lot order (quantity in shares)")
	cond := fs.String("cond", "cash", "condition: cash, margin, short or day_trade")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("%s requires exactly one symbol", side)
	}

	id, err := c.CreateOrder(ctx, tradegate.OrderRequest{
		Symbol:         fs.Arg(0),
		Side:           side,
		Quantity:       *qty,
		Price:          *price,
		MarketOrder:    *market,
		BestPriceLimit: *best,
		OddLot:         *odd,
		Condition:      *cond,
	})
	if err != nil {
		return err
	}
	fmt.Printf("order placed: %s\n", id)
	return nil
}

func runUpdate(ctx context.Context, c *tradegate.Client, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	price := fs.Float64("price", 0, "new limit price")
	qty := fs.Float64("qty", 0, "new remaining quantity")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("update requires exactly one order id")
	}

	// Only the flags actually given become update axes.
	var upd tradegate.OrderUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "price":
			upd.Price = price
		case "qty":
			upd.Quantity = qty
		}
	})

	if err := c.UpdateOrder(ctx, fs.Arg(0), upd); err != nil {
		return err
	}
	fmt.Println("order updated")
	return nil
}

func runCancel(ctx context.Context, c *tradegate.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("cancel requires exactly one order id")
	}
	if err := c.CancelOrder(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("order cancelled")
	return nil
}

func parseDates(start, end string) (time.Time, time.Time, error) {
	startDay, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad start date %q", start)
	}
	endDay, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad end date %q", end)
	}
	return startDay, endDay, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
