package model

import (
	"encoding/json"
	"fmt"
)

// AccountData is the compact account shape embedded in events and actions.
type AccountData struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	IsScam   bool   `json:"is_scam"`
	IsWallet bool   `json:"is_wallet"`
}

type ActionType string

const (
	ActionSmartContractExec ActionType = "SmartContractExec"
	ActionContractDeploy    ActionType = "ContractDeploy"
	ActionJettonSwap        ActionType = "JettonSwap"
	ActionJettonTransfer    ActionType = "JettonTransfer"
	ActionTonTransfer       ActionType = "TonTransfer"
	ActionJettonMint        ActionType = "JettonMint"
)

// Action is a tagged union: exactly one payload field is populated,
// selected by the Type tag at decode time.
type Action struct {
	Type   ActionType
	Status string

	SmartContractExec *SmartContractExec
	ContractDeploy    *ContractDeploy
	JettonSwap        *JettonSwap
	JettonTransfer    *JettonTransfer
	TonTransfer       *TonTransfer
	JettonMint        *JettonMint
}

type SmartContractExec struct {
	Executor    AccountData `json:"executor"`
	Contract    AccountData `json:"contract"`
	TonAttached int64       `json:"ton_attached"`
	Operation   string      `json:"operation"`
	Payload     string      `json:"payload"`
}

type ContractDeploy struct {
	Address    string   `json:"address"`
	Interfaces []string `json:"interfaces"`
}

type JettonSwap struct {
	Dex            string          `json:"dex"`
	AmountIn       string          `json:"amount_in"`
	AmountOut      string          `json:"amount_out"`
	TonOut         int64           `json:"ton_out"`
	UserWallet     AccountData     `json:"user_wallet"`
	Router         AccountData     `json:"router"`
	JettonMasterIn *JettonMetadata `json:"jetton_master_in"`
}

type JettonTransfer struct {
	Sender           AccountData    `json:"sender"`
	Recipient        AccountData    `json:"recipient"`
	SendersWallet    string         `json:"senders_wallet"`
	RecipientsWallet string         `json:"recipients_wallet"`
	Amount           BigInt         `json:"amount"`
	Comment          string         `json:"comment"`
	Jetton           JettonMetadata `json:"jetton"`
}

type TonTransfer struct {
	Sender    AccountData `json:"sender"`
	Recipient AccountData `json:"recipient"`
	Amount    int64       `json:"amount"`
}

type JettonMint struct {
	Recipient        AccountData    `json:"recipient"`
	RecipientsWallet string         `json:"recipients_wallet"`
	Amount           BigInt         `json:"amount"`
	Jetton           JettonMetadata `json:"jetton"`
}

// Event is one on-chain activity record with its ordered action list.
type Event struct {
	ID         string      `json:"event_id"`
	Account    AccountData `json:"account"`
	Timestamp  int64       `json:"timestamp"`
	Actions    []Action    `json:"actions"`
	IsScam     bool        `json:"is_scam"`
	InProgress bool        `json:"in_progress"`
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         string            `json:"event_id"`
		Account    AccountData       `json:"account"`
		Timestamp  int64             `json:"timestamp"`
		Actions    []json.RawMessage `json:"actions"`
		IsScam     bool              `json:"is_scam"`
		InProgress bool              `json:"in_progress"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID = raw.ID
	e.Account = raw.Account
	e.Timestamp = raw.Timestamp
	e.IsScam = raw.IsScam
	e.InProgress = raw.InProgress
	e.Actions = decodeActions(raw.Actions)
	return nil
}

// decodeActions dispatches each raw action on its type tag. Malformed or
// unrecognized actions are dropped, not errors: upstream adds action kinds
// faster than anyone can model them.
func decodeActions(raws []json.RawMessage) []Action {
	var actions []Action
	for _, raw := range raws {
		act, err := decodeAction(raw)
		if err != nil {
			continue
		}
		actions = append(actions, act)
	}
	return actions
}

var errEmptyPayload = fmt.Errorf("action payload missing for its type tag")

func decodeAction(raw json.RawMessage) (Action, error) {
	var head struct {
		Type   ActionType `json:"type"`
		Status string     `json:"status"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Action{}, err
	}

	act := Action{Type: head.Type, Status: head.Status}
	dec, ok := actionDecoders[head.Type]
	if !ok {
		return Action{}, fmt.Errorf("unrecognized action type %q", head.Type)
	}
	if err := dec(raw, &act); err != nil {
		return Action{}, err
	}
	return act, nil
}

// actionDecoders fill the payload field matching the type tag.
var actionDecoders = map[ActionType]func(json.RawMessage, *Action) error{
	ActionSmartContractExec: func(raw json.RawMessage, a *Action) error {
		var p struct {
			Payload *SmartContractExec `json:"SmartContractExec"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if p.Payload == nil {
			return errEmptyPayload
		}
		a.SmartContractExec = p.Payload
		return nil
	},
	ActionContractDeploy: func(raw json.RawMessage, a *Action) error {
		var p struct {
			Payload *ContractDeploy `json:"ContractDeploy"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if p.Payload == nil {
			return errEmptyPayload
		}
		a.ContractDeploy = p.Payload
		return nil
	},
	ActionJettonSwap: func(raw json.RawMessage, a *Action) error {
		var p struct {
			Payload *JettonSwap `json:"JettonSwap"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if p.Payload == nil {
			return errEmptyPayload
		}
		a.JettonSwap = p.Payload
		return nil
	},
	ActionJettonTransfer: func(raw json.RawMessage, a *Action) error {
		var p struct {
			Payload *JettonTransfer `json:"JettonTransfer"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if p.Payload == nil {
			return errEmptyPayload
		}
		a.JettonTransfer = p.Payload
		return nil
	},
	ActionTonTransfer: func(raw json.RawMessage, a *Action) error {
		var p struct {
			Payload *TonTransfer `json:"TonTransfer"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if p.Payload == nil {
			return errEmptyPayload
		}
		a.TonTransfer = p.Payload
		return nil
	},
	ActionJettonMint: func(raw json.RawMessage, a *Action) error {
		var p struct {
			Payload *JettonMint `json:"JettonMint"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if p.Payload == nil {
			return errEmptyPayload
		}
		a.JettonMint = p.Payload
		return nil
	},
}
