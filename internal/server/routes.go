package server

import (
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

// publicProcedures are callable without a session.
var publicProcedures = []string{
	apiconnect.AuthServiceRegisterProcedure,
	apiconnect.AuthServiceLoginProcedure,
}

// adminProcedures change club data and need the admin flag.
var adminProcedures = []string{
	apiconnect.MemberServiceCreateMemberProcedure,
	apiconnect.MemberServiceUpdateMemberProcedure,
	apiconnect.MemberServiceDeleteMemberProcedure,
	apiconnect.MemberServiceUploadMemberPhotoProcedure,

	apiconnect.LedgerServiceCreateAccountProcedure,
	apiconnect.LedgerServiceUpdateAccountProcedure,
	apiconnect.LedgerServiceDeleteAccountProcedure,
	apiconnect.LedgerServiceCreatePostingProcedure,
	apiconnect.LedgerServiceUpdatePostingProcedure,
	apiconnect.LedgerServiceDeletePostingProcedure,

	apiconnect.FeeServiceGenerateMonthlyFeesProcedure,
	apiconnect.FeeServicePayFeeProcedure,

	apiconnect.GameServiceCreateGameProcedure,
	apiconnect.GameServiceUpdateGameProcedure,
	apiconnect.GameServiceDeleteGameProcedure,
	apiconnect.GameServiceGetRSVPLinkProcedure,
}
