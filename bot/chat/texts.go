package chat

import (
	"fmt"
	"time"

	"ServiceSaathi/entity"
)

// pick selects the localized variant for the user's language. Users who have
// not chosen a language yet fall back to English.
func pick(l Language, en, ml string) string {
	if l.Malayalam() {
		return ml
	}
	return en
}

func TextLanguagePrompt() string {
	return "*✨ Welcome to SERVICE SAATHI - Akshaya Centre! ✨*\n" +
		"Please choose your language:\n1️⃣ English\n2️⃣ Malayalam\n" +
		"_(Change language anytime with /LANG)_"
}

func TextLanguageInvalid() string {
	return "*Invalid input.* Please choose:\n1️⃣ English\n2️⃣ Malayalam"
}

func TextLanguageSet(l Language) string {
	return pick(l,
		"Language set to English.",
		"ഭാഷ മലയാളമായി ക്രമീകരിച്ചു.")
}

func TextMainMenu(l Language) string {
	if l.Malayalam() {
		return "*പ്രധാന മെനു | Main Menu*\n\n" +
			"ദയവായി ഒരു ഓപ്ഷൻ തിരഞ്ഞെടുക്കുക:\n\n" +
			"1️⃣ ചാറ്റ് (Chat with AI Assistant)\n" +
			"2️⃣ ഡോക്യുമെന്റ് അപേക്ഷിക്കുക (Apply for Document)\n" +
			"\n_(നിങ്ങളുടെ അപേക്ഷകളുടെ നിലവിലെ അവസ്ഥ അറിയാൻ /service എന്ന് അയക്കുക)_" +
			"\n_(ഭാഷ മാറ്റാൻ /LANG എന്ന് അയക്കുക)_"
	}
	return "*Main Menu*\n\n" +
		"Please choose an option:\n\n" +
		"1️⃣ Chat with AI Assistant\n" +
		"2️⃣ Apply for Document\n" +
		"\n_(Send /service to check your application status)_" +
		"\n_(Send /LANG to change language)_"
}

func TextMenuInvalid(l Language) string {
	return pick(l,
		"*Invalid option.* Please choose 1 or 2. Type 'hi' to restart.",
		"*തെറ്റായ ഓപ്ഷൻ.* ദയവായി 1 അല്ലെങ്കിൽ 2 തിരഞ്ഞെടുക്കുക. വീണ്ടും ആരംഭിക്കാൻ 'hi' എന്ന് ടൈപ്പ് ചെയ്യുക.")
}

func TextChatActivated(l Language) string {
	return pick(l,
		"*Chat mode activated.* You can now talk to the AI assistant.\n\nType 'back' or '0' anytime to return to the main menu.",
		"*ചാറ്റ് മോഡ് സജീവമാക്കി.* നിങ്ങൾക്ക് ഇപ്പോൾ AI അസിസ്റ്റന്റിനോട് സംസാരിക്കാം.\n\nപ്രധാന മെനുവിലേക്ക് മടങ്ങാൻ എപ്പോൾ വേണമെങ്കിലും 'back' അല്ലെങ്കിൽ '0' എന്ന് ടൈപ്പ് ചെയ്യുക.")
}

func TextChatUnavailable(l Language) string {
	return pick(l,
		"Sorry, the chat service is currently unavailable. Please try again later. You can still apply for a document (Option 2).",
		"ക്ഷമിക്കണം, ചാറ്റ് സേവനം ഇപ്പോൾ ലഭ്യമല്ല. ദയവായി പിന്നീട് വീണ്ടും ശ്രമിക്കുക. നിങ്ങൾക്ക് ഇപ്പോഴും ഡോക്യുമെന്റിനായി അപേക്ഷിക്കാം (ഓപ്ഷൻ 2).")
}

func TextChatError(l Language) string {
	return pick(l,
		"Sorry, something went wrong. Please try again.",
		"ക്ഷമിക്കണം, പ്രശ്നം വന്നിരിക്കുന്നു. വീണ്ടും ശ്രമിക്കുക.")
}

func TextDistrictHeader(l Language) string {
	return pick(l,
		"*Select your district:* (Enter the number, 0️⃣ Cancel)",
		"*നിങ്ങളുടെ ജില്ല തിരഞ്ഞെടുക്കുക:* (നമ്പർ നൽകുക, 0️⃣ റദ്ദാക്കുക)")
}

func TextSubdistrictHeader(l Language, district string) string {
	return pick(l,
		fmt.Sprintf("*Select subdistrict in %s:* (Enter the number, 0️⃣ Cancel, 'back' to reselect district)", district),
		fmt.Sprintf("*%s ജില്ലയിലെ താലൂക്ക് തിരഞ്ഞെടുക്കുക:* (നമ്പർ നൽകുക, 0️⃣ റദ്ദാക്കുക, ജില്ല മാറ്റാൻ 'back')", district))
}

func TextDocumentHeader(l Language) string {
	return pick(l,
		"*Select document to apply:* (Enter the number, 0️⃣ Cancel, 'back' to reselect subdistrict)",
		"*അപേക്ഷിക്കേണ്ട ഡോക്യുമെന്റ് തിരഞ്ഞെടുക്കുക:* (നമ്പർ നൽകുക, 0️⃣ റദ്ദാക്കുക, താലൂക്ക് മാറ്റാൻ 'back')")
}

func TextCentreHeader(l Language) string {
	return pick(l,
		"*Select centre:* (Enter the number, 0️⃣ Cancel, 'back' to reselect document)",
		"*സെന്റർ തിരഞ്ഞെടുക്കുക:* (നമ്പർ നൽകുക, 0️⃣ റദ്ദാക്കുക, ഡോക്യുമെന്റ് മാറ്റാൻ 'back')")
}

func TextInvalidRange(l Language, max int) string {
	return pick(l,
		fmt.Sprintf("Invalid choice. Enter 1–%d or 0️⃣ to cancel.", max),
		fmt.Sprintf("തെറ്റായ തിരഞ്ഞെടുപ്പ്. 1–%d നൽകുക, അല്ലെങ്കിൽ റദ്ദാക്കാൻ 0️⃣.", max))
}

func TextNoSubdistricts(l Language, district string) string {
	return pick(l,
		fmt.Sprintf("No subdistricts found for %s. Try another district:", district),
		fmt.Sprintf("%s ജില്ലയിൽ താലൂക്കുകളൊന്നും കണ്ടെത്തിയില്ല. മറ്റൊരു ജില്ല ശ്രമിക്കുക:", district))
}

func TextCatalogEmpty(l Language) string {
	return pick(l,
		"⚠️ The document catalog is currently empty. This is a system problem — please contact the operator and try again later.",
		"⚠️ ഡോക്യുമെന്റ് കാറ്റലോഗ് ഇപ്പോൾ ശൂന്യമാണ്. ഇതൊരു സിസ്റ്റം പ്രശ്നമാണ് — ദയവായി ഓപ്പറേറ്ററെ ബന്ധപ്പെടുക, പിന്നീട് വീണ്ടും ശ്രമിക്കുക.")
}

func TextNoCentres(l Language) string {
	return pick(l,
		"❌ No centres offer that service in this area.\nChoose another document or 0️⃣ to cancel.",
		"❌ ഈ പ്രദേശത്ത് ആ സേവനം നൽകുന്ന സെന്ററുകളൊന്നുമില്ല.\nമറ്റൊരു ഡോക്യുമെന്റ് തിരഞ്ഞെടുക്കുക, അല്ലെങ്കിൽ റദ്ദാക്കാൻ 0️⃣.")
}

func TextWizardCancelled(l Language) string {
	return pick(l,
		"*❌ Application cancelled.*",
		"*❌ അപേക്ഷ റദ്ദാക്കി.*")
}

func TextDirectoryUnavailable(l Language) string {
	return pick(l,
		"Sorry, the centre directory is not responding right now. Please try again in a moment.",
		"ക്ഷമിക്കണം, സെന്റർ ഡയറക്ടറി ഇപ്പോൾ പ്രതികരിക്കുന്നില്ല. അൽപ്പസമയത്തിനുശേഷം വീണ്ടും ശ്രമിക്കുക.")
}

func TextCreateFailed(l Language) string {
	return pick(l,
		"Error creating request. Please try again later or 0️⃣ to cancel.",
		"അഭ്യർത്ഥന സൃഷ്ടിക്കുന്നതിൽ പിശക്. പിന്നീട് വീണ്ടും ശ്രമിക്കുക, അല്ലെങ്കിൽ റദ്ദാക്കാൻ 0️⃣.")
}

// TextConfirmation renders the submission receipt with the required-document
// checklist, the upload link and the cancellation hint.
func TextConfirmation(l Language, message, requestID string, docs []entity.RequiredDocument, uploadLink string) string {
	out := fmt.Sprintf("*%s*\n", message)
	out += pick(l, "Request ID: ", "അഭ്യർത്ഥന ID: ") + requestID + "\n"
	out += pick(l, "Required Docs:\n", "ആവശ്യമായ രേഖകൾ:\n")
	for _, d := range docs {
		out += "• " + d.Name + "\n"
	}
	out += pick(l, "Upload Link: ", "അപ്‌ലോഡ് ലിങ്ക്: ") + uploadLink + "\n"
	out += pick(l,
		"_(Send /cancel to cancel this application, /service to check its status)_",
		"_(ഈ അപേക്ഷ റദ്ദാക്കാൻ /cancel, നില അറിയാൻ /service അയക്കുക)_")
	return out
}

func TextNoRequests(l Language) string {
	return pick(l,
		"You have no service requests currently on record.",
		"നിങ്ങളുടെ പേരിൽ നിലവിൽ സേവന അഭ്യർത്ഥനകളൊന്നും റെക്കോർഡിൽ ഇല്ല.")
}

func TextStatusHeader(l Language, count int) string {
	return pick(l,
		fmt.Sprintf("Status of your %d service request(s):", count),
		fmt.Sprintf("നിങ്ങളുടെ %d സേവന അഭ്യർത്ഥനകളുടെ നില താഴെ നൽകുന്നു:", count))
}

func TextStatusFetchFailed(l Language) string {
	return pick(l,
		"Sorry, I couldn't fetch your service status at this time. Please try again later.",
		"ക്ഷമിക്കണം, നിങ്ങളുടെ സേവന നില പരിശോധിക്കാൻ കഴിഞ്ഞില്ല. ദയവായി പിന്നീട് വീണ്ടും ശ്രമിക്കുക.")
}

// TextStatusLine renders one request summary block.
func TextStatusLine(l Language, requestID, document, centre string, status entity.RequestStatus, createdAt time.Time) string {
	created := "N/A"
	if !createdAt.IsZero() {
		created = createdAt.Format("2 Jan 2006, 3:04 PM")
	}
	if centre == "" {
		centre = "N/A"
	}
	return fmt.Sprintf("*%s:* %s\n*%s:* %s\n*%s:* %s\n*%s:* %s\n*%s:* %s",
		pick(l, "Request ID", "അഭ്യർത്ഥന ID"), requestID,
		pick(l, "Document", "ഡോക്യുമെന്റ്"), document,
		pick(l, "Centre", "കേന്ദ്രം"), centre,
		pick(l, "Status", "നില"), TextStatusName(l, status),
		pick(l, "Submitted", "സമർപ്പിച്ചത്"), created)
}

// TextStatusName localizes a gateway status value.
func TextStatusName(l Language, status entity.RequestStatus) string {
	if !l.Malayalam() {
		if status == "" {
			return "Unknown"
		}
		name := string(status)
		if name[0] >= 'a' && name[0] <= 'z' {
			name = string(name[0]-'a'+'A') + name[1:]
		}
		return name
	}
	switch status {
	case entity.StatusInitiated:
		return "ആരംഭിച്ചു"
	case entity.StatusDocumentsUploading:
		return "രേഖകൾ അപ്‌ലോഡ് ചെയ്യുന്നു"
	case entity.StatusProcessing:
		return "പ്രോസസ്സ് ചെയ്യുന്നു"
	case entity.StatusSubmitted:
		return "സമർപ്പിച്ചു"
	case entity.StatusRejected:
		return "നിരസിച്ചു"
	case entity.StatusFailed:
		return "പരാജയപ്പെട്ടു"
	case entity.StatusCancelled:
		return "റദ്ദാക്കി"
	}
	return string(status)
}

func TextCancelNothing(l Language) string {
	return pick(l,
		"You have no application that can be cancelled.",
		"റദ്ദാക്കാവുന്ന അപേക്ഷകളൊന്നും നിങ്ങൾക്കില്ല.")
}

func TextCancelSuccess(l Language, requestID string) string {
	return pick(l,
		fmt.Sprintf("*✅ Application %s cancelled.*", requestID),
		fmt.Sprintf("*✅ അപേക്ഷ %s റദ്ദാക്കി.*", requestID))
}

func TextCancelAlreadyDone(l Language, requestID string) string {
	return pick(l,
		fmt.Sprintf("Application %s could not be cancelled — it may already be finished.", requestID),
		fmt.Sprintf("അപേക്ഷ %s റദ്ദാക്കാൻ കഴിഞ്ഞില്ല — അത് ഇതിനകം പൂർത്തിയായിരിക്കാം.", requestID))
}

func TextCancelFailed(l Language) string {
	return pick(l,
		"Sorry, the cancellation failed. Please try again later.",
		"ക്ഷമിക്കണം, റദ്ദാക്കൽ പരാജയപ്പെട്ടു. ദയവായി പിന്നീട് വീണ്ടും ശ്രമിക്കുക.")
}

// TextPollerFinal is the one final message a poller sends when a request
// reaches a terminal status.
func TextPollerFinal(l Language, requestID string, status entity.RequestStatus) string {
	switch status {
	case entity.StatusSubmitted:
		return pick(l,
			fmt.Sprintf("✅ Your application %s has been received successfully.", requestID),
			fmt.Sprintf("✅ നിങ്ങളുടെ അപേക്ഷ %s വിജയകരമായി ലഭിച്ചു.", requestID))
	case entity.StatusRejected:
		return pick(l,
			fmt.Sprintf("❌ Your application %s was rejected. Please contact your centre for details.", requestID),
			fmt.Sprintf("❌ നിങ്ങളുടെ അപേക്ഷ %s നിരസിച്ചു. വിശദാംശങ്ങൾക്ക് സെന്ററുമായി ബന്ധപ്പെടുക.", requestID))
	case entity.StatusFailed:
		return pick(l,
			fmt.Sprintf("⚠️ Processing of your application %s failed. Please try submitting again.", requestID),
			fmt.Sprintf("⚠️ നിങ്ങളുടെ അപേക്ഷ %s പ്രോസസ്സ് ചെയ്യുന്നത് പരാജയപ്പെട്ടു. വീണ്ടും സമർപ്പിക്കാൻ ശ്രമിക്കുക.", requestID))
	case entity.StatusCancelled:
		return pick(l,
			fmt.Sprintf("Your application %s has been cancelled.", requestID),
			fmt.Sprintf("നിങ്ങളുടെ അപേക്ഷ %s റദ്ദാക്കപ്പെട്ടു.", requestID))
	}
	return pick(l,
		fmt.Sprintf("Your application %s is now: %s.", requestID, TextStatusName(l, status)),
		fmt.Sprintf("നിങ്ങളുടെ അപേക്ഷ %s ഇപ്പോൾ: %s.", requestID, TextStatusName(l, status)))
}

func TextPollerTimeout(l Language, requestID string) string {
	return pick(l,
		fmt.Sprintf("⏳ Your application %s is taking longer than expected. Send /service later to check its status.", requestID),
		fmt.Sprintf("⏳ നിങ്ങളുടെ അപേക്ഷ %s പ്രതീക്ഷിച്ചതിലും കൂടുതൽ സമയമെടുക്കുന്നു. നില അറിയാൻ പിന്നീട് /service അയക്കുക.", requestID))
}

func TextCriticalError(l Language) string {
	return pick(l,
		"⚠️ A critical error occurred. Please type 'hi' to continue.",
		"⚠️ ഗുരുതരമായ ഒരു പിശക് സംഭവിച്ചു. തുടരാൻ 'hi' എന്ന് ടൈപ്പ് ചെയ്യുക.")
}
