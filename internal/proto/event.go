package proto

// Server event types.
const (
	SRunCreated      = "RUN_CREATED"
	SStateUpdate     = "STATE_UPDATE"
	SDeltaUpdate     = "DELTA_UPDATE"
	SCombatEvent     = "COMBAT_EVENT"
	STauntEvent      = "TAUNT_EVENT"
	SBossPhaseChange = "BOSS_PHASE_CHANGE"
	SLootDrop        = "LOOT_DROP"
	SItemCollected   = "ITEM_COLLECTED"
	SPotionUsed      = "POTION_USED"
	SVendorServices  = "VENDOR_SERVICES"
	SPurchaseResult  = "PURCHASE_RESULT"
	SChestOpened     = "CHEST_OPENED"
	SFloorComplete   = "FLOOR_COMPLETE"
	SSaveData        = "SAVE_DATA"
	SClaimReceipt    = "CLAIM_RECEIPT"
	SPong            = "PONG"
	SError           = "ERROR"
)

type RunCreated struct {
	RunID    string `json:"runId"`
	PlayerID string `json:"playerId"`
	Seed     string `json:"seed"`
	Floor    int    `json:"floor"`
}

// CombatEvent is the shared shape for every damage, heal and block
// notification. Zero-valued optionals are omitted on the wire.
type CombatEvent struct {
	SourceID        string `json:"sourceId"`
	TargetID        string `json:"targetId"`
	AbilityID       string `json:"abilityId,omitempty"`
	Damage          int    `json:"damage,omitempty"`
	Heal            int    `json:"heal,omitempty"`
	Blocked         int    `json:"blocked,omitempty"`
	ManaRestore     int    `json:"manaRestore,omitempty"`
	IsCrit          bool   `json:"isCrit,omitempty"`
	IsStealthAttack bool   `json:"isStealthAttack,omitempty"`
	IsDoT           bool   `json:"isDot,omitempty"`
	Killed          bool   `json:"killed,omitempty"`
}

type TauntEvent struct {
	PetID    string   `json:"petId"`
	EnemyIDs []string `json:"enemyIds"`
}

type BossPhaseChange struct {
	BossID string `json:"bossId"`
	Phase  string `json:"phase"` // engaged|defeated
	RoomID int    `json:"roomId"`
}

type LootDrop struct {
	SourceID string   `json:"sourceId"`
	ItemIDs  []string `json:"itemIds,omitempty"`
	Gold     int      `json:"gold,omitempty"`
	XP       int      `json:"xp,omitempty"`
}

type ItemCollected struct {
	PlayerID string `json:"playerId"`
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	Equipped bool   `json:"equipped,omitempty"`
}

type PotionUsed struct {
	PlayerID string `json:"playerId"`
	ItemID   string `json:"itemId"`
	Heal     int    `json:"heal,omitempty"`
	Mana     int    `json:"mana,omitempty"`
}

// VendorService is one line of a vendor's offer sheet.
type VendorService struct {
	ServiceType string `json:"serviceType"`
	Label       string `json:"label"`
	Cost        int    `json:"cost"`
	AbilityID   string `json:"abilityId,omitempty"`
	ItemID      string `json:"itemId,omitempty"`
	Available   bool   `json:"available"`
}

type VendorServices struct {
	VendorID   string          `json:"vendorId"`
	VendorType string          `json:"vendorType"`
	Services   []VendorService `json:"services"`
}

type PurchaseResult struct {
	VendorID    string `json:"vendorId"`
	ServiceType string `json:"serviceType"`
	OK          bool   `json:"ok"`
	Message     string `json:"message,omitempty"`
	Gold        int    `json:"gold"` // balance after the transaction
}

type ChestOpened struct {
	ChestID string   `json:"chestId"`
	Mimic   bool     `json:"mimic,omitempty"`
	ItemIDs []string `json:"itemIds,omitempty"`
	Gold    int      `json:"gold,omitempty"`
	ClaimID string   `json:"claimId,omitempty"` // boss chests, oracle-bound
}

type FloorComplete struct {
	Floor     int    `json:"floor"`
	NextFloor int    `json:"nextFloor"`
	Theme     string `json:"theme"`
}

type SaveData struct {
	SaveData any    `json:"saveData"`
	MAC      string `json:"mac,omitempty"`
}

type ClaimReceipt struct {
	ClaimID  string `json:"claimId"`
	Attested bool   `json:"attested"`
}

type Pong struct {
	Time int64 `json:"time"` // server unix millis
}

type Error struct {
	Message string `json:"message"`
}
