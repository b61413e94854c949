// Package ui renders workflow results for the terminal client.
package ui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"travel_smart/internal/domain"
)

const maxCell = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle   = lipgloss.NewStyle()
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// Table lays out one header line and one line per row. Cells are truncated
// to a fixed width; empty cells render as "-".
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := range headers {
			if i < len(row) {
				widths[i] = max(widths[i], min(lipgloss.Width(cell(row, i)), maxCell))
			}
		}
	}

	var b strings.Builder
	b.WriteString(line(headers, widths, headerStyle))
	for _, row := range rows {
		b.WriteByte('\n')
		vals := make([]string, len(headers))
		for i := range headers {
			vals[i] = cell(row, i)
		}
		b.WriteString(line(vals, widths, cellStyle))
	}
	return b.String()
}

func cell(row []string, i int) string {
	if i >= len(row) || strings.TrimSpace(row[i]) == "" {
		return "-"
	}
	return truncate(row[i], maxCell)
}

func line(vals []string, widths []int, st lipgloss.Style) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = st.Width(widths[i]).Render(v)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// FlightOffers renders one row per offer, numbered from 1 as the CLI
// selects them.
func FlightOffers(offers []domain.FlightOffer) string {
	rows := make([][]string, 0, len(offers))
	for i, o := range offers {
		ret := ""
		if o.Return != nil {
			ret = route(*o.Return)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			route(o.Outbound),
			departs(o.Outbound),
			Duration(o.Outbound.Duration),
			stops(o.Outbound),
			ret,
			money(o.Price),
		})
	}
	return Table([]string{"#", "ROUTE", "DEPARTS", "DURATION", "STOPS", "RETURN", "PRICE"}, rows)
}

// HotelOffers renders one row per room offer.
func HotelOffers(offers []domain.HotelOffer) string {
	rows := make([][]string, 0, len(offers))
	for i, o := range offers {
		rating := ""
		if o.Hotel.Rating != nil {
			rating = strconv.FormatFloat(*o.Hotel.Rating, 'f', -1, 64) + "★"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			o.Hotel.Name,
			rating,
			o.Room.RoomType,
			o.Room.CancellationPolicy,
			money(o.Room.Price),
			o.Room.ID,
		})
	}
	return Table([]string{"#", "HOTEL", "RATING", "ROOM", "CANCELLATION", "PRICE", "OFFER"}, rows)
}

func Airports(as []domain.Airport) string {
	rows := make([][]string, 0, len(as))
	for _, a := range as {
		rows = append(rows, []string{a.IATACode, a.Name, a.CityName, a.Country})
	}
	return Table([]string{"CODE", "NAME", "CITY", "COUNTRY"}, rows)
}

func Trips(trips []domain.Trip) string {
	rows := make([][]string, 0, len(trips))
	for _, t := range trips {
		spent, left := "", ""
		if t.Summary != nil {
			spent, left = t.Summary.TotalSpent.String(), t.Summary.Remaining.String()
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10), t.Name, t.Destination,
			t.StartDate + " → " + t.EndDate, t.Budget.String(), spent, left,
		})
	}
	return Table([]string{"ID", "NAME", "DESTINATION", "DATES", "BUDGET", "SPENT", "REMAINING"}, rows)
}

// TripDetail renders the trip header followed by its flights and hotels.
func TripDetail(d domain.TripDetail) string {
	t := d.Trip
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", headerStyle.Render(t.Name), dimStyle.Render(t.Destination))
	fmt.Fprintf(&b, "%s → %s  budget %s\n", t.StartDate, t.EndDate, t.Budget)
	if t.Notes != "" {
		b.WriteString(dimStyle.Render(t.Notes) + "\n")
	}

	fl := make([][]string, 0, len(d.Flights))
	for _, f := range d.Flights {
		fl = append(fl, []string{
			strconv.FormatInt(f.ID, 10), f.Airline, f.FlightNumber,
			f.DepartureAirport + " → " + f.ArrivalAirport, f.DepartureTime, f.ArrivalTime,
		})
	}
	b.WriteString("\n" + Table([]string{"ID", "AIRLINE", "FLIGHT", "ROUTE", "DEPARTS", "ARRIVES"}, fl) + "\n")

	hl := make([][]string, 0, len(d.Hotels))
	for _, h := range d.Hotels {
		hl = append(hl, []string{strconv.FormatInt(h.ID, 10), h.Name, h.Location, h.CheckIn, h.CheckOut})
	}
	b.WriteString("\n" + Table([]string{"ID", "HOTEL", "LOCATION", "CHECK-IN", "CHECK-OUT"}, hl))
	return b.String()
}

func Expenses(es []domain.Expense) string {
	rows := make([][]string, 0, len(es))
	for _, e := range es {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10), e.Date, e.Category, e.Title, e.Amount.String() + " " + e.Currency,
		})
	}
	return Table([]string{"ID", "DATE", "CATEGORY", "TITLE", "AMOUNT"}, rows)
}

// Summary renders budget figures and the per-category breakdown, largest first.
func Summary(s domain.TripSummary) string {
	var b strings.Builder
	if s.Trip != "" {
		b.WriteString(headerStyle.Render(s.Trip) + "\n")
	}
	fmt.Fprintf(&b, "budget %s  spent %s  remaining %s\n", s.Budget, s.TotalSpent, s.Remaining)

	cats := make([]string, 0, len(s.CategoryBreakdown))
	for c := range s.CategoryBreakdown {
		cats = append(cats, c)
	}
	sortByAmount(cats, s.CategoryBreakdown)
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c, s.CategoryBreakdown[c].String()})
	}
	b.WriteString(Table([]string{"CATEGORY", "SPENT"}, rows))
	return b.String()
}

func sortByAmount(cats []string, m map[string]domain.Amount) {
	for i := 1; i < len(cats); i++ {
		for j := i; j > 0 && less(cats[j], cats[j-1], m); j-- {
			cats[j], cats[j-1] = cats[j-1], cats[j]
		}
	}
}

func less(a, b string, m map[string]domain.Amount) bool {
	if m[a] != m[b] {
		return m[a] > m[b]
	}
	return a < b
}

func Confirmation(kind domain.BookingKind, c domain.Confirmation) string {
	s := okStyle.Render(fmt.Sprintf("%s booked", kind)) + "  reference " + c.Reference
	if c.ProviderConfirmationID != "" {
		s += "  confirmation " + c.ProviderConfirmationID
	}
	if c.Status != "" {
		s += "  (" + c.Status + ")"
	}
	return s
}

func Error(msg string) string { return errStyle.Render("error:") + " " + msg }

func route(it domain.Itinerary) string {
	if len(it.Segments) == 0 {
		return ""
	}
	first, last := it.Segments[0], it.Segments[len(it.Segments)-1]
	return first.DepartureAirport + " → " + last.ArrivalAirport
}

func departs(it domain.Itinerary) string {
	if len(it.Segments) == 0 {
		return ""
	}
	return strings.Replace(it.Segments[0].DepartureTime, "T", " ", 1)
}

func stops(it domain.Itinerary) string {
	switch n := it.Stops(); n {
	case 0:
		return "direct"
	case 1:
		return "1 stop"
	default:
		return strconv.Itoa(n) + " stops"
	}
}

func money(p domain.Price) string {
	if p.Total == "" {
		return ""
	}
	return p.Total + " " + p.Currency
}

var isoDuration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?$`)

// Duration turns an ISO-8601 time duration such as PT7H25M into "7h 25m".
// Anything else is returned unchanged.
func Duration(s string) string {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return s
	}
	var parts []string
	if m[1] != "" {
		parts = append(parts, m[1]+"h")
	}
	if m[2] != "" {
		parts = append(parts, m[2]+"m")
	}
	return strings.Join(parts, " ")
}
