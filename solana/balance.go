package solana

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/tidwall/gjson"
)

// TokenBalance is a token account balance in raw and display form.
type TokenBalance struct {
	Amount   uint64
	Decimals uint8
	UIAmount string
}

// GetTokenBalance reads a token account balance from the jsonParsed account
// encoding.
func GetTokenBalance(ctx context.Context, rpcClient *rpc.Client, account solana.PublicKey) (*TokenBalance, error) {
	out, err := rpcClient.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentFinalized,
		Encoding:   solana.EncodingJSONParsed,
	})
	if err != nil {
		return nil, err
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("token account %s not found", account)
	}

	raw := out.Value.Data.GetRawJSON()
	tokenAmount := gjson.GetBytes(raw, "parsed.info.tokenAmount")
	if !tokenAmount.Exists() {
		return nil, fmt.Errorf("account %s is not a token account", account)
	}

	amount, err := strconv.ParseUint(tokenAmount.Get("amount").String(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse token amount: %w", err)
	}

	return &TokenBalance{
		Amount:   amount,
		Decimals: uint8(tokenAmount.Get("decimals").Uint()),
		UIAmount: tokenAmount.Get("uiAmountString").String(),
	}, nil
}

// GetTokenBalanceAmount reads just the raw amount, 0 when the account does
// not exist yet.
func GetTokenBalanceAmount(ctx context.Context, rpcClient *rpc.Client, account solana.PublicKey) (uint64, error) {
	out, err := GetAccountInfo(ctx, rpcClient, account)
	if err == rpc.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if out == nil || out.Value == nil {
		return 0, nil
	}
	tokenAccount, err := new(AccountLayout).Decode(out.Value.Data.GetBinary())
	if err != nil {
		return 0, err
	}
	return tokenAccount.Amount, nil
}
