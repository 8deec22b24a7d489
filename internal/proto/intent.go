package proto

import "encoding/json"

// Client intent types.
const (
	CCreateRun         = "CREATE_RUN"
	CCreateRunFromSave = "CREATE_RUN_FROM_SAVE"
	CPlayerInput       = "PLAYER_INPUT"
	CSetTarget         = "SET_TARGET"
	CAdvanceFloor      = "ADVANCE_FLOOR"
	CUseItem           = "USE_ITEM"
	CSwapEquipment     = "SWAP_EQUIPMENT"
	CUnequipItem       = "UNEQUIP_ITEM"
	CInteractVendor    = "INTERACT_VENDOR"
	CPurchaseService   = "PURCHASE_SERVICE"
	CPickupGroundItem  = "PICKUP_GROUND_ITEM"
	COpenChest         = "OPEN_CHEST"
	CExportSave        = "EXPORT_SAVE"
	CClaimAttestation  = "CLAIM_ATTESTATION"
	CPing              = "PING"
)

// Vendor service kinds accepted by PURCHASE_SERVICE.
const (
	ServiceLevelUp      = "level_up"
	ServiceTrainAbility = "train_ability"
	ServiceBuyItem      = "buy_item"
	ServiceSellItem     = "sell_item"
	ServiceSellAll      = "sell_all"
)

type CreateRun struct {
	PlayerName string `json:"playerName"`
	ClassID    string `json:"classId"`
}

type CreateRunFromSave struct {
	SaveData json.RawMessage `json:"saveData"`
	MAC      string          `json:"mac,omitempty"`
}

// Position mirrors world.Vec2 on the wire.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PlayerInput struct {
	MoveX       float64   `json:"moveX"`
	MoveY       float64   `json:"moveY"`
	CastAbility string    `json:"castAbility,omitempty"`
	TargetID    string    `json:"targetId,omitempty"`
	TargetPos   *Position `json:"targetPosition,omitempty"`
}

type SetTarget struct {
	TargetID string `json:"targetId,omitempty"`
}

type UseItem struct {
	ItemID string `json:"itemId"`
}

type SwapEquipment struct {
	BackpackIndex int    `json:"backpackIndex"`
	Slot          string `json:"slot"`
}

type UnequipItem struct {
	Slot string `json:"slot"`
}

type InteractVendor struct {
	VendorID string `json:"vendorId"`
}

type PurchaseService struct {
	VendorID    string `json:"vendorId"`
	ServiceType string `json:"serviceType"`
	AbilityID   string `json:"abilityId,omitempty"`
	ItemID      string `json:"itemId,omitempty"`
}

type PickupGroundItem struct {
	ItemID string `json:"itemId"`
}

type OpenChest struct {
	ChestID string `json:"chestId"`
}

type ClaimAttestation struct {
	ClaimID     string `json:"claimId"`
	Attestation string `json:"attestation"` // opaque to the core
}
