package restart

// Restart array strides (entries per entity window).
const (
	NIWELZ = 155
	NSWELZ = 122
	NXWELZ = 130
	NZWELZ = 3
	NICONZ = 25
	NSCONZ = 41
	NXCONZ = 58
	NSGRPZ = 112
	NXGRPZ = 180
	NZGRPZ = 5
	// IGRP windows are 97 entries past the NWGMAX child slots.
	nigrpzBase = 97

	NIUDQZ = 3
	NZUDNZ = 2

	IntHeadSize  = 411
	DoubHeadSize = 229
)

// Sentinels written where no value is available.
const (
	// UnsetLimit marks a rate target or limit that is not set.
	UnsetLimit float32 = 1.0e20
	// UDQUndefined marks a UDQ without a value for an entity.
	UDQUndefined = -0.3e21
	// blank is an empty 8-character string field.
	blank = "        "
)

// Status and kind codes shared by IWEL and ICON.
const (
	StatusOpenCode int32 = 1
	StatusStopCode int32 = 0
	StatusShutCode int32 = -1000

	WTypeProducer      int32 = 1
	WTypeOilInjector   int32 = 2
	WTypeWaterInjector int32 = 3
	WTypeGasInjector   int32 = 4
)

// INTEHEAD offsets.
const (
	IHUnit        = 2
	IHNX          = 8
	IHNY          = 9
	IHNZ          = 10
	IHNActive     = 11
	IHPhase       = 14
	IHNWells      = 16
	IHNCWMax      = 17
	IHNWGMax      = 19
	IHNGMaxZ      = 20
	IHNIWelZ      = 24
	IHNSWelZ      = 25
	IHNXWelZ      = 26
	IHNZWelZ      = 27
	IHNIConZ      = 32
	IHNSConZ      = 33
	IHNXConZ      = 34
	IHNIGrpZ      = 36
	IHNSGrpZ      = 37
	IHNXGrpZ      = 38
	IHNZGrpZ      = 39
	IHReportStep  = 67
	IHProgram     = 94
	IHNWellUDQs   = 267
	IHNGroupUDQs  = 268
	IHNFieldUDQs  = 269
	IHNUDQs       = 270
	programCode   = 100
)

// DOUBHEAD offsets.
const (
	DHTime       = 0 // days since start
	DHStepLength = 1 // days
	DHMaxSubStep = 2 // days, 0 when unlimited
)

// IWEL offsets.
const (
	IWHeadI    = 0
	IWHeadJ    = 1
	IWFirstK   = 2
	IWLastK    = 3
	IWNConn    = 4
	IWGroup    = 5
	IWType     = 6
	IWActCtrl  = 7
	IWStatus   = 10
	IWVFPTab   = 11
	IWXFlow    = 22
	IWMsWID    = 70
	IWNWseg    = 71
	IWCompOrd  = 98
	compOrdTrk = 1
)

// SWEL offsets. Values are in output units.
const (
	SWOilRateTarget  = 0
	SWWatRateTarget  = 1
	SWGasRateTarget  = 2
	SWLiqRateTarget  = 3
	SWResVRateTarget = 4
	SWTHPTarget      = 6
	SWBHPTarget      = 7
	SWDatumDepth     = 9
	SWGuideRate      = 23
)

// XWEL offsets. Values are in output units.
const (
	XWOilPrRate   = 0
	XWWatPrRate   = 1
	XWGasPrRate   = 2
	XWLiqPrRate   = 3
	XWVoidPrRate  = 4
	XWFlowBHP     = 6
	XWWatCut      = 7
	XWGORatio     = 8
	XWOilPrTotal  = 18
	XWWatPrTotal  = 19
	XWGasPrTotal  = 20
	XWVoidPrTotal = 21
	XWWatInjTotal = 23
	XWGasInjTotal = 24
)

// ICON offsets.
const (
	ICSeqIndex = 0
	ICCellI    = 1
	ICCellJ    = 2
	ICCellK    = 3
	ICStatus   = 5
	ICComplNum = 12
	ICDir      = 13
	ICSegment  = 14
)

// SCON offsets.
const (
	SCConnTrans    = 0
	SCDepth        = 1
	SCDiameter     = 2
	SCEffectiveKH  = 3
	SCSkinFactor   = 4
	SCSegDistEnd   = 20
	SCSegDistStart = 21
)

// XCON offsets.
const (
	XCOilRate   = 0
	XCWaterRate = 1
	XCGasRate   = 2
	XCResVRate  = 3
	XCPressure  = 34
)

// IGRP offsets past the NWGMAX child slots.
const (
	IGNoOfChildren = 0
	IGProdCtrl     = 1
	IGGroupType    = 26
	IGGroupLevel   = 27
	IGParentGroup  = 28
)

// SGRP offsets.
const (
	SGOilRateLimit = 6
	SGWatRateLimit = 7
	SGGasRateLimit = 8
	SGLiqRateLimit = 9
	SGResVLimit    = 10
	SGWatInjLimit  = 15
	SGGasInjLimit  = 35
)

// XGRP offsets.
const (
	XGOilPrRate   = 0
	XGWatPrRate   = 1
	XGGasPrRate   = 2
	XGLiqPrRate   = 3
	XGVoidPrRate  = 4
	XGWatInjRate  = 5
	XGGasInjRate  = 6
	XGOilPrTotal  = 10
	XGWatPrTotal  = 11
	XGGasPrTotal  = 12
	XGVoidPrTotal = 13
	XGWatInjTotal = 15
	XGGasInjTotal = 16
)

// Control mode codes for IWEL and IGRP.
const (
	ctrlNone int32 = 0
	ctrlORAT int32 = 1
	ctrlWRAT int32 = 2
	ctrlGRAT int32 = 3
	ctrlLRAT int32 = 4
	ctrlRESV int32 = 5
	ctrlTHP  int32 = 6
	ctrlBHP  int32 = 7
	ctrlGRUP int32 = -1
)
