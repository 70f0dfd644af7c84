package domain

// BrandCategory identifies which brand family an order belongs to. The two
// families that matter for tax reporting are the headquarters brands (HDR,
// MRC), which ship from a restaurant headquarters address, and the meal-kit
// brand, which ships from a fulfillment facility.
type BrandCategory string

const (
	BrandMarket  BrandCategory = "MARKET"
	BrandEnvoy   BrandCategory = "ENVOY"
	BrandMRC     BrandCategory = "MRC"
	BrandHDR     BrandCategory = "HDR"
	BrandLocal   BrandCategory = "LOCAL"
	BrandMealKit BrandCategory = "MEAL_KIT"
)

// IsHeadquarters reports whether the brand ships from an HQ address.
func (b BrandCategory) IsHeadquarters() bool {
	switch b {
	case BrandHDR, BrandMRC:
		return true
	default:
		return false
	}
}

// IsMealKit reports whether the brand ships from a fulfillment facility.
func (b BrandCategory) IsMealKit() bool {
	return b == BrandMealKit
}

// RequiresTaxReport reports whether orders of this brand are tax-reported at
// all. Everything outside the headquarters and meal-kit families is handled
// by an upstream system.
func (b BrandCategory) RequiresTaxReport() bool {
	return b.IsHeadquarters() || b.IsMealKit()
}

// OrderChannel is the sales channel the order was placed through.
type OrderChannel string

const (
	ChannelApp       OrderChannel = "APP"
	ChannelWeb       OrderChannel = "WEB"
	ChannelInPerson  OrderChannel = "IN_PERSON"
	ChannelUberEats  OrderChannel = "UBER_EATS"
	ChannelSeamless  OrderChannel = "SEAMLESS"
	ChannelGrubHub   OrderChannel = "GRUB_HUB"
	ChannelDoorDash  OrderChannel = "DOOR_DASH"
	ChannelCaviar    OrderChannel = "CAVIAR"
	ChannelPostmates OrderChannel = "POSTMATES"
	ChannelCCP       OrderChannel = "CCP"
	ChannelMKApp     OrderChannel = "MK_APP"
	ChannelMKWeb     OrderChannel = "MK_WEB"
	ChannelMKLegacy  OrderChannel = "MK_LEGACY"
)

// IsThirdParty reports whether the channel is an external marketplace. Tax on
// third-party orders is collected and remitted by the marketplace itself.
func (c OrderChannel) IsThirdParty() bool {
	switch c {
	case ChannelUberEats, ChannelSeamless, ChannelGrubHub, ChannelDoorDash, ChannelCaviar, ChannelPostmates:
		return true
	default:
		return false
	}
}

// ScheduleType describes how the order was scheduled.
type ScheduleType string

const (
	ScheduleOnDemand        ScheduleType = "ON_DEMAND"
	ScheduleScheduled       ScheduleType = "SCHEDULED"
	ScheduleOneTimePurchase ScheduleType = "ONE_TIME_PURCHASE"
	ScheduleSubscription    ScheduleType = "SUBSCRIPTION"
)

// DiningOption describes how the order reaches the customer.
type DiningOption string

const (
	DiningDelivery DiningOption = "DELIVERY"
	DiningPickup   DiningOption = "PICKUP"
)

// OrderLogicType is the fulfillment pipeline variant the order flows through.
type OrderLogicType string

const (
	LogicHDR1P        OrderLogicType = "HDR_1P"
	LogicSpot         OrderLogicType = "SPOT"
	LogicHDR3P        OrderLogicType = "HDR_3P"
	LogicHDRCorporate OrderLogicType = "HDR_3P_CORPORATE"
	LogicLocalStream  OrderLogicType = "LOCAL_STREAM"
	LogicMealKit      OrderLogicType = "MEAL_KIT"
	LogicRemake       OrderLogicType = "REMAKE"
	LogicMRC          OrderLogicType = "MRC"
	// LogicMKLegacy orders are pass-through records migrated from the legacy
	// meal-kit platform; they carry no tax detail of their own.
	LogicMKLegacy OrderLogicType = "MK_LEGACY"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusPacking        OrderStatus = "PACKING"
	StatusPending        OrderStatus = "PENDING"
	StatusAssigned       OrderStatus = "ASSIGNED"
	StatusInTransit      OrderStatus = "IN_TRANSIT"
	StatusArrived        OrderStatus = "ARRIVED"
	StatusInCooking      OrderStatus = "IN_COOKING"
	StatusFoodIsReady    OrderStatus = "FOOD_IS_READY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCanceled       OrderStatus = "CANCELED"
	StatusPaymentFailed  OrderStatus = "PAYMENT_FAILED"
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	StatusPickupComplete OrderStatus = "PICKUP_COMPLETE"
	StatusDelivering     OrderStatus = "DELIVERING"
	StatusComplete       OrderStatus = "COMPLETE"
)

// IsCompleted reports whether the order reached a terminal delivered state.
func (s OrderStatus) IsCompleted() bool {
	switch s {
	case StatusDelivered, StatusComplete:
		return true
	default:
		return false
	}
}

// FeeType is the fixed vocabulary of order-level fees.
type FeeType string

const (
	FeeService     FeeType = "SERVICE_FEE"
	FeeDelivery    FeeType = "DELIVERY_FEE"
	FeeFastPass    FeeType = "FAST_PASS_FEE"
	FeeSmallOrder  FeeType = "SMALL_ORDER_FEE"
	FeeHospitality FeeType = "HOSPITALITY_FEE"
)
