package handler

import (
	"bus_booking/model"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Gateway signs and verifies redirect-based card payments. The provider
// contract is HMAC-SHA512 over the sorted query string.
type Gateway struct {
	Config model.GatewayConfig
}

func NewGateway() *Gateway {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}
	return &Gateway{
		Config: model.GatewayConfig{
			MerchantCode: os.Getenv("GATEWAY_MERCHANT_CODE"),
			HashSecret:   os.Getenv("GATEWAY_HASH_SECRET"),
			BaseURL:      os.Getenv("GATEWAY_URL"),
			ReturnURL:    os.Getenv("APP_URL") + "/payment/return",
			IPNURL:       os.Getenv("APP_URL") + "/payment/ipn",
		},
	}
}

func (g *Gateway) BuildPaymentUrl(req model.PaymentRequest) (string, error) {
	params := url.Values{}
	params.Add("pg_Version", "2.1.0")
	params.Add("pg_Command", "pay")
	params.Add("pg_MerchantCode", g.Config.MerchantCode)
	params.Add("pg_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Add("pg_CreateDate", time.Now().Format("20060102150405"))
	params.Add("pg_IpAddr", req.IPAddr)
	params.Add("pg_OrderInfo", url.QueryEscape(req.OrderInfo))
	params.Add("pg_ReturnUrl", g.Config.ReturnURL)
	params.Add("pg_TxnRef", req.TxnRef)
	params.Add("pg_ExpireDate", time.Now().Add(15*time.Minute).Format("20060102150405"))

	query := params.Encode()
	hash := g.generateHash(query)
	fullQuery := query + "&pg_SecureHash=" + hash

	return g.Config.BaseURL + "?" + fullQuery, nil
}

func (g *Gateway) VerifyReturnUrl(query url.Values) model.PaymentResponse {
	secureHash := query.Get("pg_SecureHash")
	query.Del("pg_SecureHash")

	expectedHash := g.generateHash(query.Encode())

	if secureHash != expectedHash {
		return model.PaymentResponse{IsSuccess: false, Message: "Invalid hash"}
	}

	if query.Get("pg_ResponseCode") == "00" {
		txnRef := query.Get("pg_TxnRef")
		amount, _ := strconv.ParseInt(query.Get("pg_Amount"), 10, 64)
		return model.PaymentResponse{
			IsSuccess: true,
			TxnRef:    txnRef,
			Amount:    amount / 100,
			Status:    "PAID",
		}
	}

	return model.PaymentResponse{IsSuccess: false, Message: "Payment failed"}
}

func (g *Gateway) VerifyIPN(query url.Values) model.PaymentResponse {
	secureHash := query.Get("pg_SecureHash")
	query.Del("pg_SecureHash")

	expectedHash := g.generateHash(query.Encode())

	if secureHash != expectedHash {
		return model.PaymentResponse{IsSuccess: false, Message: "Invalid IPN hash"}
	}

	if query.Get("pg_ResponseCode") == "00" {
		return model.PaymentResponse{
			IsSuccess: true,
			TxnRef:    query.Get("pg_TxnRef"),
			Status:    "PAID",
		}
	}

	return model.PaymentResponse{IsSuccess: false, Message: "IPN failed"}
}

func (g *Gateway) generateHash(data string) string {
	h := hmac.New(sha512.New, []byte(g.Config.HashSecret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
