package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
	swapDI "github.com/fd1az/balancer-connector/business/swap/di"
	"github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
	"github.com/fd1az/balancer-connector/internal/config"
	"github.com/fd1az/balancer-connector/internal/di"
	"github.com/fd1az/balancer-connector/pkg/ui/theme"
)

var labelStyle = theme.Faint.Width(12)

// runQuote prices mc once and, with execute, broadcasts the trade.
func runQuote(ctx context.Context, sr di.ServiceRegistry, mc config.MonitorConfig, execute bool, out io.Writer) error {
	pair, err := domain.ParsePair(mc.Pair)
	if err != nil {
		return err
	}
	side, err := domain.ParseSide(mc.Side)
	if err != nil {
		return err
	}

	c, err := swapDI.GetRegistry(sr).GetInstance(mc.Chain, mc.Network)
	if err != nil {
		return err
	}
	if err := c.Init(ctx); err != nil {
		return err
	}

	base, err := c.Token(pair.Base)
	if err != nil {
		return err
	}
	quote, err := c.Token(pair.Quote)
	if err != nil {
		return err
	}
	amount, err := asset.ParseString(base, mc.Amount)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidAmount, mc.Amount)
	}

	opts := app.EstimateOptions{AllowedSlippage: mc.Slippage}
	var q *domain.Quote
	if side == domain.SideBuy {
		q, err = c.EstimateBuyTrade(ctx, quote, base, amount.Raw(), opts)
	} else {
		q, err = c.EstimateSellTrade(ctx, base, quote, amount.Raw(), opts)
	}
	if err != nil {
		return err
	}

	rows := [][2]string{
		{"network", c.Name()},
		{"side", string(side)},
		{"amount in", q.AmountIn().String()},
		{"amount out", q.AmountOut().String()},
		{"price", q.AdjustedPrice().String() + " " + pair.String()},
		{"slippage", fmt.Sprintf("%d%%", q.MaxSlippagePercent)},
		{"route", fmt.Sprintf("%d hop(s), %d path(s)", q.SelectedPath.Hops(), len(q.AllPaths))},
		{"pools", strings.Join(q.SelectedPath.PoolIDs, "\n")},
	}

	if execute {
		res, err := c.ExecuteTrade(ctx, q, c.Sender(), c.Sender(), chainDomain.TxOverrides{})
		if err != nil {
			return err
		}
		rows = append(rows,
			[2]string{"limit", res.Built.Limit.String()},
			[2]string{"deadline", res.Built.Deadline.UTC().Format("2006-01-02 15:04:05Z")},
			[2]string{"tx", res.Tx.Hash.Hex()},
			[2]string{"nonce", fmt.Sprint(res.Tx.Nonce)},
		)
	}

	_, err = fmt.Fprintln(out, renderQuote(pair.String(), rows))
	return err
}

func renderQuote(title string, rows [][2]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, theme.Title.Render(title))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r[0]), theme.Value.Render(r[1])))
	}
	return theme.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
