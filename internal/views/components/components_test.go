package components

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"switchmarket/models"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestFieldEscapesValues(t *testing.T) {
	out := render(t, Field("Name", "name", "text", `a "quoted" <value>`, true))
	if !strings.Contains(out, `value="a &#34;quoted&#34; &lt;value&gt;"`) {
		t.Fatalf("expected attribute to be escaped: %s", out)
	}
	if !strings.Contains(out, " required>") {
		t.Fatalf("expected required flag: %s", out)
	}

	out = render(t, Field("Password", "password", "password", "secret", false))
	if strings.Contains(out, "secret") || strings.Contains(out, "required") {
		t.Fatalf("password fields must not echo their value: %s", out)
	}
}

func TestAlert(t *testing.T) {
	if out := render(t, Alert("error", "")); out != "" {
		t.Fatalf("expected nothing for an empty message, got %q", out)
	}
	out := render(t, Alert("error", "<script>alert(1)</script>"))
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected text to be escaped: %s", out)
	}
	if !strings.Contains(out, `class="alert alert-error"`) {
		t.Fatalf("unexpected alert markup: %s", out)
	}
}

func TestProductCardRendersValues(t *testing.T) {
	product := models.Product{ID: "p1", Name: "Gentle Shampoo", Brand: "Aqualis", NaturalPercentage: models.Percent(35)}
	out := render(t, ProductCard(product, "/img/p1.jpg"))
	for _, token := range []string{"Gentle Shampoo", "Aqualis", `href="/products/p1"`, `src="/img/p1.jpg"`, "35%", `class="natural" min="0" max="100" value="35"`} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q: %s", token, out)
		}
	}
}

func TestProductGridEmptyState(t *testing.T) {
	out := render(t, ProductGrid(nil, nil))
	if !strings.Contains(out, "No products match") {
		t.Fatalf("expected empty state: %s", out)
	}
}

func TestEffectListRendersIngredients(t *testing.T) {
	effects := []models.AggregatedEffect{{
		Function: "Hydration",
		Score:    8,
		Ingredients: []models.EffectIngredient{
			{Name: "Glycerin", Percent: 5},
			{Name: "Aqua"},
		},
	}}
	out := render(t, EffectList("Benefits", effects))
	for _, token := range []string{"Benefits", "Hydration", "8/10", "Glycerin (5%)", "Aqua"} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q: %s", token, out)
		}
	}
}

func TestToastsSkipBlankMessages(t *testing.T) {
	out := render(t, Toasts([]Toast{{Message: ""}, {Kind: ToastError, Message: "Oops"}}, true))
	if strings.Count(out, `class="toast `) != 1 {
		t.Fatalf("expected a single toast: %s", out)
	}
	if !strings.Contains(out, `hx-swap-oob="true"`) || !strings.Contains(out, "toast-error") {
		t.Fatalf("unexpected toast markup: %s", out)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(nil); got != "-" {
		t.Fatalf("expected dash for unknown share, got %q", got)
	}
	if got := Percent(models.Percent(12.5)); got != "12.5%" {
		t.Fatalf("unexpected percent %q", got)
	}
}
