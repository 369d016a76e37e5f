package settle

// responseMessages maps gateway response codes to user-facing messages.
// The table follows the VNPay code set; MoMo returns are mapped onto the
// same codes by the payment service before they reach us.
var responseMessages = map[string]string{
	"00": "Giao dịch thành công",
	"07": "Giao dịch bị nghi ngờ gian lận",
	"09": "Thẻ/Tài khoản chưa đăng ký dịch vụ InternetBanking",
	"10": "Xác thực thông tin thẻ/tài khoản không đúng quá 3 lần",
	"11": "Đã hết hạn chờ thanh toán",
	"12": "Thẻ/Tài khoản bị khóa",
	"13": "Nhập sai mật khẩu xác thực giao dịch (OTP)",
	"24": "Khách hàng hủy giao dịch",
	"51": "Tài khoản không đủ số dư để thực hiện giao dịch",
	"65": "Tài khoản đã vượt quá hạn mức giao dịch trong ngày",
	"75": "Ngân hàng thanh toán đang bảo trì",
	"79": "Nhập sai mật khẩu thanh toán quá số lần quy định",
	"99": "Lỗi khác",
}

// unknownCodeMessage is used for response codes outside the table. An
// unrecognized code is always a failure, never silently a success.
const unknownCodeMessage = "Lỗi không xác định"

// ResponseMessage returns the display message for a gateway response code.
func ResponseMessage(code string) string {
	if msg, ok := responseMessages[code]; ok {
		return msg
	}
	return unknownCodeMessage
}
