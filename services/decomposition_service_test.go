package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestOpenAIDecomposerParsesIngredients(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatReply(`["rice", "beef", "carrot", "onion"]`)))
	}))
	defer srv.Close()

	dec := NewOpenAIDecomposer("sk-test", "gpt-3.5-turbo-0125", 5*time.Second).WithBaseURL(srv.URL)

	ingredients, err := dec.Decompose(context.Background(), "Beef Pilaf")
	require.NoError(t, err)
	assert.Equal(t, []string{"rice", "beef", "carrot", "onion"}, ingredients)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo-0125", gotBody["model"])
}

func TestOpenAIDecomposerAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	dec := NewOpenAIDecomposer("sk-test", "gpt-3.5-turbo-0125", 5*time.Second).WithBaseURL(srv.URL)

	_, err := dec.Decompose(context.Background(), "Beef Pilaf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestParseIngredientList(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"plain array", `["rice", "salmon"]`, []string{"rice", "salmon"}},
		{"code fence", "```json\n[\"rice\", \"salmon\"]\n```", []string{"rice", "salmon"}},
		{"bare fence", "```\n[\"rice\"]\n```", []string{"rice"}},
		{"prose around array", `Sure! Here it is: ["rice", "beef"] hope that helps`, []string{"rice", "beef"}},
		{"blank entries dropped", `["rice", " ", "beef"]`, []string{"rice", "beef"}},
		{"empty array", `[]`, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseIngredientList(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := parseIngredientList("I cannot break this down")
	assert.Error(t, err)
}

type fakeDecomposer struct {
	ingredients []string
	err         error
	calls       int
}

func (f *fakeDecomposer) Decompose(ctx context.Context, dishName string) ([]string, error) {
	f.calls++
	return f.ingredients, f.err
}

func TestDecompositionServiceFallback(t *testing.T) {
	primary := &fakeDecomposer{err: errors.New("openai down")}
	fallback := &fakeDecomposer{ingredients: []string{"rice", "beef"}}
	svc := NewDecompositionService(primary, fallback, nil)

	got, err := svc.Decompose(context.Background(), "Beef Pilaf")
	require.NoError(t, err)
	assert.Equal(t, []string{"rice", "beef"}, got)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestDecompositionServicePrimaryWins(t *testing.T) {
	primary := &fakeDecomposer{ingredients: []string{"pasta", "egg", "bacon"}}
	fallback := &fakeDecomposer{ingredients: []string{"wrong"}}
	svc := NewDecompositionService(primary, fallback, nil)

	got, err := svc.Decompose(context.Background(), "Pasta Carbonara")
	require.NoError(t, err)
	assert.Equal(t, []string{"pasta", "egg", "bacon"}, got)
	assert.Zero(t, fallback.calls)
}

func TestDecompositionServiceBothFail(t *testing.T) {
	primary := &fakeDecomposer{err: errors.New("openai down")}
	fallback := &fakeDecomposer{err: errors.New("gemini down")}
	svc := NewDecompositionService(primary, fallback, nil)

	_, err := svc.Decompose(context.Background(), "Mystery Stew")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini down")
}

func TestDecompositionServiceKnownDishLastResort(t *testing.T) {
	primary := &fakeDecomposer{err: errors.New("openai down")}
	fallback := &fakeDecomposer{err: errors.New("gemini down")}
	svc := NewDecompositionService(primary, fallback, nil)

	got, err := svc.Decompose(context.Background(), "Beef Pilaf")
	require.NoError(t, err)
	assert.Equal(t, []string{"rice", "meat", "carrot", "onion", "oil", "spices"}, got)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestKnownIngredientsFor(t *testing.T) {
	got, ok := knownIngredientsFor("Margherita PIZZA slice")
	require.True(t, ok)
	assert.Equal(t, []string{"dough", "tomato sauce", "mozzarella cheese", "pepperoni", "tomatoes"}, got)

	_, ok = knownIngredientsFor("Mystery Stew")
	assert.False(t, ok)
}

func TestDecompositionServiceEmptyListPropagates(t *testing.T) {
	primary := &fakeDecomposer{ingredients: []string{}}
	fallback := &fakeDecomposer{ingredients: []string{"unused"}}
	svc := NewDecompositionService(primary, fallback, nil)

	got, err := svc.Decompose(context.Background(), "Mystery Dish")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, fallback.calls)
}
