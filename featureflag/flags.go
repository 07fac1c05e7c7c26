package featureflag

type Flag string

const (
	FlagDisableSIMDFiltering      Flag = "DISABLE_SIMD_FILTERING"
	FlagDisablePredictiveLoading  Flag = "DISABLE_PREDICTIVE_LOADING"
	FlagDisablePriorityScheduling Flag = "DISABLE_PRIORITY_SCHEDULING"
)
