package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chrisdamba/menuboard/internal/menu"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/rs/zerolog/log"
)

// App is the interactive menu manager. It drives one session from a line-oriented
// terminal and saves to the configured store.
type App struct {
	session  *menu.Session
	store    storage.Store
	dataFile string
	p        *Prompter
	st       styles
}

func New(session *menu.Session, store storage.Store, dataFile string, in io.Reader, out io.Writer) *App {
	return &App{
		session:  session,
		store:    store,
		dataFile: dataFile,
		p:        NewPrompter(in, out),
		st:       newStyles(out),
	}
}

type action struct {
	key   string
	label string
	run   func(ctx context.Context) error
}

func (a *App) actions() []action {
	return []action{
		{"1", "📝 Add new dish", a.addItem},
		{"2", "🗑️  Remove dish", a.removeItem},
		{"3", "✏️  Update dish", a.updateItem},
		{"4", "📋 Display full menu", a.displayMenu},
		{"5", "🔍 Search menu", a.searchMenu},
		{"6", "🛎️  Take order", a.takeOrder},
		{"7", "📊 View statistics", a.viewStatistics},
		{"8", "💾 Save menu", a.saveMenu},
		{"9", "📂 Load menu", a.loadMenu},
	}
}

// Run executes the main loop until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	err := a.run(ctx)
	if errors.Is(err, ErrInputClosed) {
		a.p.Println()
		return nil
	}
	return err
}

func (a *App) run(ctx context.Context) error {
	a.p.Println(rule("="))
	a.p.Println(a.st.title.Render("🍽️  RESTAURANT MENU MANAGEMENT SYSTEM 🍽️"))
	a.p.Println(rule("="))

	name, err := a.p.Ask("\nEnter your restaurant name: ")
	if err != nil {
		return err
	}
	if name != "" {
		if err := a.session.Catalog.SetName(name); err != nil {
			return err
		}
	}

	if _, err := a.store.ReadFile(ctx, a.dataFile); err == nil {
		load, err := a.p.Confirm("\nFound existing menu data. Load it? (y/n): ")
		if err != nil {
			return err
		}
		if load {
			a.load(ctx, a.dataFile)
		}
	}

	actions := a.actions()
	for {
		a.p.Printf("\n%s\n", rule("="))
		a.p.Println(a.st.heading.Render("🏠 " + a.session.Catalog.RestaurantName + " - Main Menu"))
		a.p.Println(rule("="))
		a.p.Println()
		for _, act := range actions {
			a.p.Printf("%s. %s\n", act.key, act.label)
		}
		a.p.Println("0. 🚪 Exit")

		choice, err := a.p.Ask("\nEnter your choice: ")
		if err != nil {
			return err
		}
		if choice == "0" {
			return a.exit(ctx)
		}

		var selected *action
		for i := range actions {
			if actions[i].key == choice {
				selected = &actions[i]
			}
		}
		if selected == nil {
			a.fail("Invalid choice. Please try again.")
			continue
		}
		if err := selected.run(ctx); err != nil {
			if errors.Is(err, ErrInputClosed) {
				return err
			}
			a.fail(err.Error())
		}
	}
}

func (a *App) ok(msg string) {
	a.p.Println(a.st.success.Render("✅ " + msg))
}

func (a *App) fail(msg string) {
	a.p.Println(a.st.failure.Render("❌ " + msg))
}

func (a *App) section(title string) {
	a.p.Printf("\n%s\n%s\n", a.st.heading.Render(title), rule("-")[:40])
}

func (a *App) currency() string { return a.session.Catalog.Currency }

func (a *App) exit(ctx context.Context) error {
	save, err := a.p.Confirm("\nSave menu before exiting? (y/n): ")
	if err != nil {
		return err
	}
	if save {
		if err := a.saveMenu(ctx); err != nil {
			a.fail(err.Error())
		}
	}
	a.p.Printf("\nThank you for using %s Menu System!\nGoodbye! 👋\n", a.session.Catalog.RestaurantName)
	return nil
}

func (a *App) askDietaryTags(label string) ([]models.DietaryTag, error) {
	for i, tag := range models.DietaryTags {
		a.p.Printf("%d. %s\n", i+1, tag)
	}
	positions, err := a.p.AskPositions(label, len(models.DietaryTags))
	if err != nil {
		return nil, err
	}
	tags := make([]models.DietaryTag, 0, len(positions))
	for _, pos := range positions {
		tags = append(tags, models.DietaryTags[pos-1])
	}
	return tags, nil
}

func (a *App) addItem(context.Context) error {
	a.section("🍽️  ADD NEW MENU ITEM")

	a.p.Println("\nSelect category:")
	for i, cat := range models.Categories {
		a.p.Printf("%d. %s\n", i+1, cat)
	}
	var category models.Category
	for category == "" {
		pos, err := a.p.Select("\nEnter category number: ", len(models.Categories))
		if err != nil {
			return err
		}
		if pos == 0 {
			a.fail("Invalid choice. Please try again.")
			continue
		}
		category = models.Categories[pos-1]
	}

	var name string
	for name == "" {
		answer, err := a.p.Ask("Enter dish name: ")
		if err != nil {
			return err
		}
		if answer == "" {
			a.fail("Name cannot be empty.")
		}
		name = answer
	}

	price, err := a.p.AskPrice("Enter price: "+a.currency(), a.currency())
	if err != nil {
		return err
	}
	description, err := a.p.Ask("Enter description (optional): ")
	if err != nil {
		return err
	}
	a.p.Println("\nSelect dietary information (enter numbers separated by commas, or press Enter to skip):")
	tags, err := a.askDietaryTags("Your choices: ")
	if err != nil {
		return err
	}

	if _, err := a.session.Catalog.AddItem(name, price, category, description, tags, true); err != nil {
		return err
	}
	a.ok(fmt.Sprintf("'%s' added to %s successfully!", name, category))
	return nil
}

// pick lists entries and returns the chosen one, or false on cancel.
func (a *App) pick(entries []menu.Entry, prompt string, line func(menu.Entry) string) (menu.Entry, bool, error) {
	for i, e := range entries {
		a.p.Printf("%d. %s\n", i+1, line(e))
	}
	pos, err := a.p.Select(prompt, len(entries))
	if err != nil || pos == 0 {
		return menu.Entry{}, false, err
	}
	e, ok := menu.Select(entries, pos)
	return e, ok, nil
}

func (a *App) removeItem(context.Context) error {
	a.section("🗑️  REMOVE MENU ITEM")

	entries := a.session.Catalog.AllItems()
	if len(entries) == 0 {
		a.p.Println("No items in menu to remove.")
		return nil
	}
	a.p.Println("\nSelect item to remove:")
	e, ok, err := a.pick(entries, "\nEnter item number (0 to cancel): ", func(e menu.Entry) string {
		return entryLine(e, a.currency())
	})
	if err != nil || !ok {
		return err
	}
	if err := a.session.Catalog.RemoveItem(e.Item); err != nil {
		return err
	}
	a.ok(fmt.Sprintf("'%s' removed from menu.", e.Item.Name))
	return nil
}

func (a *App) updateItem(context.Context) error {
	a.section("✏️  UPDATE MENU ITEM")

	entries := a.session.Catalog.AllItems()
	if len(entries) == 0 {
		a.p.Println("No items in menu to update.")
		return nil
	}
	a.p.Println("\nSelect item to update:")
	e, ok, err := a.pick(entries, "\nEnter item number (0 to cancel): ", func(e menu.Entry) string {
		availability := "Available"
		if !e.Item.IsAvailable {
			availability = "Unavailable"
		}
		return fmt.Sprintf("%s (%s)", entryLine(e, a.currency()), availability)
	})
	if err != nil || !ok {
		return err
	}
	item := e.Item

	a.p.Printf("\nUpdating: %s\n", item.Name)
	a.p.Println("1. Update price")
	a.p.Println("2. Update description")
	a.p.Println("3. Toggle availability")
	a.p.Println("4. Update dietary info")
	choice, err := a.p.Ask("\nWhat would you like to update? ")
	if err != nil {
		return err
	}

	c := a.session.Catalog
	switch choice {
	case "1":
		answer, err := a.p.Ask(fmt.Sprintf("Enter new price (current: %s): %s", formatPrice(a.currency(), item.Price), a.currency()))
		if err != nil {
			return err
		}
		price, perr := parsePrice(answer, a.currency())
		if perr != nil {
			a.fail("Invalid price.")
			return nil
		}
		if err := c.UpdatePrice(item, price); err != nil {
			return err
		}
		a.ok("Price updated!")
	case "2":
		desc, err := a.p.AskRaw(fmt.Sprintf("Enter new description (current: %s): ", item.Description))
		if err != nil {
			return err
		}
		if err := c.UpdateDescription(item, desc); err != nil {
			return err
		}
		a.ok("Description updated!")
	case "3":
		available, err := c.ToggleAvailability(item)
		if err != nil {
			return err
		}
		status := "unavailable"
		if available {
			status = "available"
		}
		a.ok("Item is now " + status + "!")
	case "4":
		current := dietaryList(item)
		if current == "" {
			current = "None"
		}
		a.p.Printf("Current dietary info: %s\n", current)
		a.p.Println("\nSelect new dietary information (enter numbers separated by commas):")
		tags, err := a.askDietaryTags("Your choices: ")
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		if err := c.UpdateDietaryTags(item, tags); err != nil {
			return err
		}
		a.ok("Dietary info updated!")
	default:
		a.fail("Invalid choice.")
	}
	return nil
}

func (a *App) displayMenu(context.Context) error {
	c := a.session.Catalog
	a.p.Printf("\n%s\n", rule("="))
	a.p.Println(a.st.title.Render("🍴 " + strings.ToUpper(c.RestaurantName) + " MENU 🍴"))
	a.p.Println(rule("="))

	if c.IsEmpty() {
		a.p.Println("\nMenu is empty. Add some items first!")
		return nil
	}

	for _, cat := range models.Categories {
		items := c.Items(cat)
		if len(items) == 0 {
			continue
		}
		a.p.Printf("\n%s\n%s\n", a.st.heading.Render("📍 "+strings.ToUpper(string(cat))), rule("-")[:30])
		for _, item := range items {
			a.p.Printf("\n%s\n", describeItem(item, c.Currency))
		}
	}

	summary := menu.Summarize(c)
	a.p.Printf("\n%s\n", rule("="))
	a.p.Printf("All prices in %s\n", c.Currency)
	a.p.Printf("\n📊 Total items: %d | Available: %d\n", summary.TotalItems, summary.AvailableItems)
	return nil
}

func (a *App) searchMenu(context.Context) error {
	a.section("🔍 SEARCH MENU")

	term, err := a.p.Ask("Enter search term (name or dietary restriction): ")
	if err != nil {
		return err
	}
	found := a.session.Catalog.Search(term)
	if len(found) == 0 {
		a.p.Printf("No items found matching '%s'\n", term)
		return nil
	}
	a.p.Printf("\n📋 Found %d item(s):\n", len(found))
	for _, e := range found {
		a.p.Printf("\n%s\n", entryLine(e, a.currency()))
		if e.Item.Description != "" {
			a.p.Printf("  %s\n", e.Item.Description)
		}
		if len(e.Item.DietaryTags) > 0 {
			a.p.Printf("  Dietary: %s\n", dietaryList(e.Item))
		}
	}
	return nil
}

func (a *App) takeOrder(context.Context) error {
	a.section("📝 TAKE ORDER")

	c := a.session.Catalog
	if len(c.ListAvailable()) == 0 {
		a.p.Println("No items available for ordering.")
		return nil
	}

	cart := a.session.Orders.NewCart()
	for {
		available := c.ListAvailable()
		a.p.Println("\nAvailable items:")
		for i, e := range available {
			dietary := ""
			if len(e.Item.DietaryTags) > 0 {
				dietary = " (" + dietaryList(e.Item) + ")"
			}
			a.p.Printf("%d. [%s] %s%s - %s\n", i+1, e.Category, e.Item.Name, dietary, formatPrice(c.Currency, e.Item.Price))
		}

		choice, err := a.p.Ask("\nEnter item number (or 'done' to finish): ")
		if err != nil {
			return err
		}
		if strings.EqualFold(choice, "done") {
			break
		}
		pos, err := strconv.Atoi(choice)
		if err != nil {
			a.fail("Please enter a valid number.")
			continue
		}
		e, ok := menu.Select(available, pos)
		if !ok {
			a.fail("Invalid choice.")
			continue
		}

		answer, err := a.p.Ask(fmt.Sprintf("Quantity for %s: ", e.Item.Name))
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(answer)
		if err != nil {
			a.fail("Please enter a valid number.")
			continue
		}
		if err := cart.Add(e.Item, qty); err != nil {
			a.fail(err.Error())
			continue
		}
		a.ok(fmt.Sprintf("Added %dx %s (%s)", qty, e.Item.Name, formatPrice(c.Currency, e.Item.Price*float64(qty))))
	}

	if cart.IsEmpty() {
		return a.session.Orders.Cancel(cart)
	}

	a.p.Printf("\n%s\nORDER SUMMARY\n%s\n", rule("=")[:40], rule("-")[:40])
	for _, line := range cart.Lines() {
		a.p.Printf("%dx %s - %s\n", line.Quantity, line.Item.Name, formatPrice(c.Currency, line.Item.Price*float64(line.Quantity)))
	}
	a.p.Printf("%s\nTOTAL: %s%s\n", rule("-")[:40], c.Currency, cart.Subtotal().StringFixed(2))

	confirm, err := a.p.Confirm("\nConfirm order? (y/n): ")
	if err != nil {
		return err
	}
	if !confirm {
		a.p.Println("Order cancelled.")
		return a.session.Orders.Cancel(cart)
	}

	customer, err := a.p.Ask("Customer name (optional): ")
	if err != nil {
		return err
	}
	notes, err := a.p.Ask("Order notes (optional): ")
	if err != nil {
		return err
	}
	cart.CustomerName = customer
	cart.Notes = notes

	order, err := a.session.ConfirmOrder(cart)
	if err != nil {
		return err
	}
	log.Debug().Str("order_id", order.ID).Str("total", order.Total.StringFixed(2)).Msg("Order confirmed")
	a.ok("Order confirmed!")
	a.p.Println(receipt(order, c.Currency))

	rate, err := a.p.Confirm("Would the customer like to rate any items? (y/n): ")
	if err != nil || !rate {
		return err
	}
	for _, item := range menu.RatableItems(order) {
		answer, err := a.p.Ask(fmt.Sprintf("Rate %s (1-5 stars, or skip): ", item.Name))
		if err != nil {
			return err
		}
		score, convErr := strconv.Atoi(answer)
		if answer == "" || convErr != nil {
			continue
		}
		if err := a.session.RateItem(order, item, score); err != nil {
			a.fail(err.Error())
			continue
		}
		a.ok(fmt.Sprintf("Thank you for rating %s!", item.Name))
	}
	return nil
}

func (a *App) viewStatistics(context.Context) error {
	c := a.session.Catalog
	a.p.Printf("\n%s\n%s\n", a.st.heading.Render("📊 RESTAURANT STATISTICS"), rule("="))

	summary := menu.Summarize(c)
	a.p.Println("\n📋 Menu Statistics:")
	a.p.Printf("  Total items: %d\n", summary.TotalItems)
	a.p.Printf("  Available items: %d\n", summary.AvailableItems)
	a.p.Printf("  Active categories: %d\n", summary.ActiveCategories)
	for _, cs := range summary.Categories {
		a.p.Printf("  %s: %d items (avg price: %s)\n", cs.Category, cs.Count, formatPrice(c.Currency, cs.AveragePrice))
	}

	if prices := menu.AnalyzePrices(c, 5); len(prices.MostExpensive) > 0 {
		a.p.Println("\n💲 Prices:")
		a.p.Printf("  Range: %s - %s (avg %s)\n",
			formatPrice(c.Currency, prices.Min), formatPrice(c.Currency, prices.Max), formatPrice(c.Currency, prices.Average))
		for _, e := range prices.MostExpensive {
			a.p.Printf("  %s\n", entryLine(e, c.Currency))
		}
	}

	if top := menu.TopRated(c, 3); len(top) > 0 {
		a.p.Println("\n⭐ Top Rated Items:")
		for _, e := range top {
			a.p.Printf("  %s (%s): %.1f/5 (%d reviews)\n", e.Item.Name, e.Category, e.Item.Rating, e.Item.ReviewCount)
		}
	}

	sales := menu.Sales(a.session.Orders, 3)
	a.p.Println("\n💰 Today's Sales:")
	a.p.Printf("  Orders: %d\n", sales.OrderCount)
	a.p.Printf("  Revenue: %s%s\n", c.Currency, sales.Revenue.StringFixed(2))
	if sales.OrderCount > 0 {
		a.p.Printf("  Average order: %s%s\n", c.Currency, sales.AverageOrderValue.StringFixed(2))
		a.p.Println("\n🔥 Today's Best Sellers:")
		for _, b := range sales.BestSellers {
			a.p.Printf("  %s: %d orders\n", b.Name, b.Quantity)
		}
	}
	return nil
}

func (a *App) saveMenu(ctx context.Context) error {
	if err := menu.SaveTo(ctx, a.store, a.dataFile, a.session.Catalog); err != nil {
		return err
	}
	a.ok("Menu saved to " + a.store.Location(a.dataFile))
	return nil
}

func (a *App) loadMenu(ctx context.Context) error {
	name, err := a.p.Ask(fmt.Sprintf("Enter filename (default: %s): ", a.dataFile))
	if err != nil {
		return err
	}
	if name == "" {
		name = a.dataFile
	}
	a.load(ctx, name)
	return nil
}

// load replaces the session catalog. On any failure the current catalog stays.
func (a *App) load(ctx context.Context, name string) {
	c, err := menu.LoadFrom(ctx, a.store, name)
	switch {
	case errors.Is(err, models.ErrNotFound):
		a.p.Printf("No saved menu found at %s\n", a.store.Location(name))
	case err != nil:
		log.Warn().Err(err).Str("file", name).Msg("Failed to load menu")
		a.fail(err.Error())
	default:
		a.session.Replace(c)
		a.ok("Menu loaded from " + a.store.Location(name))
	}
}
