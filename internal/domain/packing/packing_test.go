package packing

import (
	"reflect"
	"testing"

	"concierge/internal/domain/trip"
)

func forecast(highs []float64, precip []int) []trip.WeatherDay {
	out := make([]trip.WeatherDay, len(highs))
	for i, h := range highs {
		out[i] = trip.WeatherDay{TemperatureHigh: h, PrecipitationChance: precip[i]}
	}
	return out
}

func names(items []trip.PackingItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Item
	}
	return out
}

func TestBuildPolicyTable(t *testing.T) {
	tests := []struct {
		name   string
		fc     []trip.WeatherDay
		length int
		prefs  trip.Preferences
		want   []string
	}{
		{
			name:   "warm and dry short trip",
			fc:     forecast([]float64{80, 78}, []int{10, 10}),
			length: 2,
			want: []string{
				"Lightweight shorts", "T-shirts", "Sunglasses", "Sunscreen",
				"Comfortable walking shoes", "Toiletries kit", "Phone charger", "Travel documents",
			},
		},
		{
			name:   "boundary 75 is mild",
			fc:     forecast([]float64{75}, []int{30}),
			length: 1,
			want: []string{
				"Light jacket", "Comfortable jeans", "Layers (sweater/cardigan)",
				"Comfortable walking shoes", "Toiletries kit", "Phone charger", "Travel documents",
			},
		},
		{
			name:   "cold rainy family extended stay",
			fc:     forecast([]float64{40, 55, 60, 45}, []int{10, 31, 0, 0}),
			length: 4,
			prefs:  trip.Preferences{HasChildren: true},
			want: []string{
				"Warm jacket", "Warm pants", "Scarf and gloves",
				"Rain jacket", "Umbrella",
				"Comfortable walking shoes", "Toiletries kit", "Phone charger", "Travel documents",
				"Snacks for kids", "Entertainment (books/toys)",
				"Laundry detergent",
			},
		},
		{
			name:   "empty forecast averages 70",
			fc:     nil,
			length: 3,
			want: []string{
				"Light jacket", "Comfortable jeans", "Layers (sweater/cardigan)",
				"Comfortable walking shoes", "Toiletries kit", "Phone charger", "Travel documents",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Build(tt.fc, tt.length, tt.prefs))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Build() = %v\nwant %v", got, tt.want)
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	fc := forecast([]float64{82, 79, 90}, []int{50, 0, 10})
	prefs := trip.Preferences{HasChildren: true, Budget: trip.BudgetHigh}
	first := Build(fc, 5, prefs)
	for i := 0; i < 10; i++ {
		if next := Build(fc, 5, prefs); !reflect.DeepEqual(first, next) {
			t.Fatalf("run %d differs: %v vs %v", i, first, next)
		}
	}
}
