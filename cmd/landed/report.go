package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Simplici0/landedcost/internal/pricing"
)

var printer = message.NewPrinter(language.Korean)

// won formats a whole-won amount with Korean digit grouping.
func won(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

func qty(v float64) string {
	return printer.Sprintf("%.3f", v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReport(w io.Writer, res *pricing.Result) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tName\tQty\tR.TON\tPrice\tFactory\tTariff\tVAT\tShared\tTotal\tUnit cost\t")
	for _, p := range res.Products {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.ProductID, p.Name, p.Quantity, qty(p.Volume.RTon),
			won(p.Price), won(p.FactoryCost), won(p.Tariff), won(p.VAT),
			won(p.Shared.Total()), won(p.Total), won(p.UnitCost),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	t := res.Totals
	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintf(tw, "Mode\t%s\t\n", res.Mode)
	fmt.Fprintf(tw, "Products\t%d (excluded %d)\t\n", t.Products, t.Excluded)
	fmt.Fprintf(tw, "R.TON\t%s\t\n", qty(t.TotalRTon))
	if t.Rate != nil {
		fmt.Fprintf(tw, "Rate\t%s %s @ %s CBM (%s)\t\n", qty(t.Rate.Rate), t.Rate.Currency, qty(t.Rate.AppliedQuantity), t.Rate.Match)
	}
	fmt.Fprintf(tw, "China inland\t%s\t\n", won(t.Shared.Inland))
	fmt.Fprintf(tw, "International\t%s\t\n", won(t.Shared.International))
	fmt.Fprintf(tw, "Domestic\t%s\t\n", won(t.Shared.Domestic))
	fmt.Fprintf(tw, "3PL\t%s\t\n", won(t.Shared.ThreePL))
	fmt.Fprintf(tw, "Remittance (%s)\t%s\t\n", t.Remittance.Method, won(t.Shared.Remittance))
	fmt.Fprintf(tw, "FTA savings\t%s\t\n", won(t.FTASavings))
	fmt.Fprintf(tw, "Total\t%s\t\n", won(t.Total))
	if err := tw.Flush(); err != nil {
		return err
	}

	if res.Container != nil {
		fmt.Fprintf(w, "\nContainers: %s\n", res.Container.Selected.Label)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}

func writeRate(w io.Writer, r pricing.ResolvedRate, rates pricing.ExchangeRates) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Quantity\t%s\t\n", qty(r.Quantity))
	fmt.Fprintf(tw, "Applied\t%s\t\n", qty(r.AppliedQuantity))
	fmt.Fprintf(tw, "Match\t%s\t\n", r.Match)
	fmt.Fprintf(tw, "Rate\t%s %s\t\n", qty(r.Rate), r.Currency)
	fmt.Fprintf(tw, "Rate (KRW)\t%s\t\n", won(rates.ToKRW(r.Rate, r.Currency)))
	return tw.Flush()
}

func writeContainerPlan(w io.Writer, plan *pricing.ContainerPlan) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "\tOption\tCapacity\tOverflow\tEquipment\tTrucking\tOverflow cost\tTotal\t")
	for _, o := range plan.Options {
		mark := ""
		if o.Label == plan.Selected.Label {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			mark, o.Label, qty(o.CapacityCBM), qty(o.OverflowRTon),
			won(o.EquipmentCost), won(o.TruckingCost), won(o.Overflow.Total()), won(o.TotalCost),
		)
	}
	return tw.Flush()
}
