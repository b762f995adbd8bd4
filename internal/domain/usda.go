package domain

// USDAFood represents a food item from the USDA FoodData Central API
type USDAFood struct {
	FdcID       int            `json:"fdcId"`
	Description string         `json:"description"`
	DataType    string         `json:"dataType"`
	FoodClass   string         `json:"foodClass,omitempty"`
	Nutrients   []USDANutrient `json:"foodNutrients"`
}

// USDANutrient represents a single nutrient from USDA data. Search results
// use the flat fields; food detail responses nest the nutrient and report
// Amount instead of Value.
type USDANutrient struct {
	NutrientID     int                 `json:"nutrientId"`
	NutrientName   string              `json:"nutrientName"`
	NutrientNumber string              `json:"nutrientNumber,omitempty"`
	UnitName       string              `json:"unitName"`
	Value          float64             `json:"value"`
	Nutrient       *USDANutrientDetail `json:"nutrient,omitempty"`
	Amount         float64             `json:"amount,omitempty"`
}

// USDANutrientDetail is the nested nutrient of a food detail response
type USDANutrientDetail struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	UnitName string `json:"unitName"`
}

// ID returns the nutrient id in either response format
func (n USDANutrient) ID() int {
	if n.NutrientID == 0 && n.Nutrient != nil {
		return n.Nutrient.ID
	}
	return n.NutrientID
}

// Quantity returns the nutrient value in either response format
func (n USDANutrient) Quantity() float64 {
	if n.NutrientID == 0 && n.Nutrient != nil {
		return n.Amount
	}
	return n.Value
}

// USDASearchResponse represents the response from USDA search API
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}
