package wahoo

// Location is where a workout type takes place.
type Location string

// Workout type locations.
const (
	LocationOutdoor Location = "Outdoor"
	LocationIndoor  Location = "Indoor"
	LocationUnknown Location = "Unknown"
)

// Family groups workout types into broad sport categories.
type Family string

// Workout type families.
const (
	FamilyBiking      Family = "Biking"
	FamilyRunning     Family = "Running"
	FamilyWalking     Family = "Walking"
	FamilyTrack       Family = "Track"
	FamilyTrail       Family = "Trail"
	FamilySwimming    Family = "Swimming"
	FamilySnowSport   Family = "Snow Sport"
	FamilySkating     Family = "Skating"
	FamilyWaterSports Family = "Water Sports"
	FamilyGym         Family = "Gym"
	FamilyOther       Family = "Other"
	FamilyNA          Family = "N/A"
	FamilyUnknown     Family = "Unknown"
)

// WorkoutType describes one entry of the Wahoo workout type catalog.
type WorkoutType struct {
	ID          int
	Description string
	Location    Location
	Family      Family
}

func (t WorkoutType) String() string { return t.Description }

// workoutTypes is the Wahoo Cloud API workout type catalog. IDs are not
// contiguous; gaps are real gaps in the API.
var workoutTypes = map[int]WorkoutType{
	0:   {0, "Biking", LocationOutdoor, FamilyBiking},
	1:   {1, "Running", LocationOutdoor, FamilyRunning},
	2:   {2, "Fitness Equipment", LocationIndoor, FamilyNA},
	3:   {3, "Running Track", LocationOutdoor, FamilyTrack},
	4:   {4, "Running Trail", LocationOutdoor, FamilyTrail},
	5:   {5, "Running Treadmill", LocationIndoor, FamilyRunning},
	6:   {6, "Walking", LocationOutdoor, FamilyWalking},
	7:   {7, "Speed Walking", LocationOutdoor, FamilyWalking},
	8:   {8, "Nordic Walking", LocationOutdoor, FamilyWalking},
	9:   {9, "Hiking", LocationOutdoor, FamilyWalking},
	10:  {10, "Mountaineering", LocationOutdoor, FamilyWalking},
	11:  {11, "Cyclocross", LocationOutdoor, FamilyBiking},
	12:  {12, "Indoor Biking", LocationIndoor, FamilyBiking},
	13:  {13, "Mountain Biking", LocationOutdoor, FamilyBiking},
	14:  {14, "Recumbent Biking", LocationOutdoor, FamilyBiking},
	15:  {15, "Road Biking", LocationOutdoor, FamilyBiking},
	16:  {16, "Track Biking", LocationOutdoor, FamilyBiking},
	17:  {17, "Motorcycling", LocationOutdoor, FamilyBiking},
	18:  {18, "General Fitness Equipment", LocationIndoor, FamilyNA},
	19:  {19, "Fitness Equipment Treadmill", LocationIndoor, FamilyNA},
	20:  {20, "Elliptical", LocationIndoor, FamilyGym},
	21:  {21, "Fitness Equipment Bike", LocationIndoor, FamilyNA},
	22:  {22, "Rowing Machine", LocationIndoor, FamilyGym},
	23:  {23, "Climbing Machine", LocationIndoor, FamilyNA},
	25:  {25, "Lap Swimming", LocationIndoor, FamilySwimming},
	26:  {26, "Open Water Swimming", LocationOutdoor, FamilySwimming},
	27:  {27, "Snowboarding", LocationOutdoor, FamilySnowSport},
	28:  {28, "Skiing", LocationOutdoor, FamilySnowSport},
	29:  {29, "Downhill Skiing", LocationOutdoor, FamilySnowSport},
	30:  {30, "Cross Country Skiing", LocationOutdoor, FamilySnowSport},
	31:  {31, "Skating", LocationOutdoor, FamilySkating},
	32:  {32, "Ice Skating", LocationIndoor, FamilySkating},
	33:  {33, "Inline Skating", LocationIndoor, FamilySkating},
	34:  {34, "Longboarding", LocationOutdoor, FamilySkating},
	35:  {35, "Sailing", LocationOutdoor, FamilyWaterSports},
	36:  {36, "Windsurfing", LocationOutdoor, FamilyWaterSports},
	37:  {37, "Canoeing", LocationOutdoor, FamilyWaterSports},
	38:  {38, "Kayaking", LocationOutdoor, FamilyWaterSports},
	39:  {39, "Rowing", LocationOutdoor, FamilyWaterSports},
	40:  {40, "Kiteboarding", LocationOutdoor, FamilyWaterSports},
	41:  {41, "Stand Up Paddle Board", LocationOutdoor, FamilyWaterSports},
	42:  {42, "Workout", LocationIndoor, FamilyGym},
	43:  {43, "Cardio Class", LocationIndoor, FamilyGym},
	44:  {44, "Stair Climber", LocationIndoor, FamilyGym},
	45:  {45, "Wheelchair", LocationOutdoor, FamilyOther},
	46:  {46, "Golfing", LocationOutdoor, FamilyOther},
	47:  {47, "Other", LocationOutdoor, FamilyOther},
	49:  {49, "Indoor Cycling Class", LocationIndoor, FamilyBiking},
	56:  {56, "Walking Treadmill", LocationIndoor, FamilyWalking},
	61:  {61, "Indoor Trainer", LocationIndoor, FamilyBiking},
	62:  {62, "Multisport", LocationOutdoor, FamilyNA},
	63:  {63, "Transition", LocationOutdoor, FamilyNA},
	64:  {64, "E-Biking", LocationOutdoor, FamilyBiking},
	65:  {65, "TICKR Offline", LocationOutdoor, FamilyNA},
	66:  {66, "Yoga", LocationIndoor, FamilyGym},
	67:  {67, "Running Race", LocationOutdoor, FamilyRunning},
	68:  {68, "Indoor Virtual Biking", LocationIndoor, FamilyBiking},
	69:  {69, "Mental Strength", LocationIndoor, FamilyOther},
	70:  {70, "Handcycling", LocationOutdoor, FamilyBiking},
	71:  {71, "Indoor Virtual Running", LocationIndoor, FamilyRunning},
	255: {255, "Unknown", LocationUnknown, FamilyUnknown},
}

// WorkoutTypeUnknown is returned for IDs the catalog does not know.
var WorkoutTypeUnknown = workoutTypes[255]

// WorkoutTypeFromID looks up a workout type by its API ID, falling back
// to WorkoutTypeUnknown for unrecognized IDs.
func WorkoutTypeFromID(id int) WorkoutType {
	if t, ok := workoutTypes[id]; ok {
		return t
	}

	return WorkoutTypeUnknown
}
